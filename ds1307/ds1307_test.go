package ds1307

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/tester"
)

func newTestDevice(c *qt.C) (*Device, *tester.I2CBus, *tester.I2CDevice) {
	bus := tester.NewI2CBus(c)
	fake := tester.NewI2CDevice(c, Address)
	bus.AddDevice(fake)
	return New(bus), bus, fake
}

func TestSecondRoundTrip(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	for s := uint8(0); s < 60; s++ {
		c.Assert(d.SetSecond(s), qt.IsNil)
		// the chip may report a halted oscillator; that must not leak into the value.
		fake.Registers[RegSeconds] |= clockHalt
		got, err := d.ReadSecond()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, s)
	}
}

func TestFieldEncoding(t *testing.T) {
	tests := []struct {
		name string
		set  func(d *Device) error
		reg  Register
		want uint8
	}{{
		name: "second",
		set:  func(d *Device) error { return d.SetSecond(45) },
		reg:  RegSeconds,
		want: 0x45,
	}, {
		name: "minute",
		set:  func(d *Device) error { return d.SetMinute(59) },
		reg:  RegMinutes,
		want: 0x59,
	}, {
		name: "date",
		set:  func(d *Device) error { return d.SetDate(31) },
		reg:  RegDate,
		want: 0x31,
	}, {
		name: "weekday",
		set:  func(d *Device) error { return d.SetWeekday(Sunday) },
		reg:  RegDay,
		want: 0x07,
	}, {
		name: "month",
		set:  func(d *Device) error { return d.SetMonth(December) },
		reg:  RegMonth,
		want: 0x12,
	}, {
		name: "year",
		set:  func(d *Device) error { return d.SetYear(2025) },
		reg:  RegYear,
		want: 0x25,
	}, {
		name: "unvalidated date",
		set:  func(d *Device) error { return d.SetDate(30) },
		reg:  RegDate,
		want: 0x30,
	}}
	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			d, bus, fake := newTestDevice(c)
			c.Assert(test.set(d), qt.IsNil)
			c.Assert(fake.Registers[test.reg], qt.Equals, test.want)
			c.Assert(bus.Transactions(), qt.HasLen, 1)
		})
	}
}

func TestReadFields(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	fake.Registers[RegMinutes] = 0x34
	fake.Registers[RegDate] = 0x29
	fake.Registers[RegDay] = 0x03
	fake.Registers[RegMonth] = 0x02

	minute, err := d.ReadMinute()
	c.Assert(err, qt.IsNil)
	c.Assert(minute, qt.Equals, uint8(34))

	date, err := d.ReadDate()
	c.Assert(err, qt.IsNil)
	c.Assert(date, qt.Equals, uint8(29))

	day, err := d.ReadWeekday()
	c.Assert(err, qt.IsNil)
	c.Assert(day, qt.Equals, Wednesday)

	month, err := d.ReadMonth()
	c.Assert(err, qt.IsNil)
	c.Assert(month, qt.Equals, February)
}

func TestReadUnknownEnums(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	fake.Registers[RegDay] = 0x00
	fake.Registers[RegMonth] = 0x13

	day, err := d.ReadWeekday()
	c.Assert(err, qt.IsNil)
	c.Assert(day, qt.Equals, UnknownWeekday)

	month, err := d.ReadMonth()
	c.Assert(err, qt.IsNil)
	c.Assert(month, qt.Equals, UnknownMonth)
}

func TestCentury(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	c.Assert(d.SetYear(2025), qt.IsNil)

	year, err := d.ReadYear()
	c.Assert(err, qt.IsNil)
	c.Assert(year, qt.Equals, uint16(2025))

	// The chip rolls its two digits over; the century is carried, not recomputed.
	fake.Registers[RegYear] = 0x00
	year, err = d.ReadYear()
	c.Assert(err, qt.IsNil)
	c.Assert(year, qt.Equals, uint16(2000))
	c.Assert(d.State().Century, qt.Equals, uint16(2000))
}

func TestUnprimedCentury(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	fake.Registers[RegYear] = 0x25

	year, err := d.ReadYear()
	c.Assert(err, qt.IsNil)
	c.Assert(year, qt.Equals, uint16(25))

	d.Configure(Config{Century: 2100})
	c.Assert(d.State().Year, qt.Equals, uint16(2125))
	year, err = d.ReadYear()
	c.Assert(err, qt.IsNil)
	c.Assert(year, qt.Equals, uint16(2125))
}

func TestConfigureAddress(t *testing.T) {
	c := qt.New(t)
	bus := tester.NewI2CBus(c)
	fake := tester.NewI2CDevice(c, 0x50)
	bus.AddDevice(fake)

	d := New(bus)
	d.Configure(Config{Address: 0x50})
	c.Assert(d.SetMinute(7), qt.IsNil)
	c.Assert(fake.Registers[RegMinutes], qt.Equals, uint8(0x07))

	d.Configure(Config{})
	c.Assert(d.Address, qt.Equals, uint8(Address))
}

func TestClockHalt(t *testing.T) {
	c := qt.New(t)
	d, bus, fake := newTestDevice(c)
	fake.Registers[RegSeconds] = 0x45

	c.Assert(d.SetClockHalt(true), qt.IsNil)
	c.Assert(fake.Registers[RegSeconds], qt.Equals, uint8(0x80))
	halted, err := d.Halted()
	c.Assert(err, qt.IsNil)
	c.Assert(halted, qt.IsTrue)

	fake.Registers[RegSeconds] = 0xC5
	c.Assert(d.SetClockHalt(false), qt.IsNil)
	c.Assert(fake.Registers[RegSeconds], qt.Equals, uint8(0x00))
	halted, err = d.Halted()
	c.Assert(err, qt.IsNil)
	c.Assert(halted, qt.IsFalse)
	c.Assert(d.State().Second, qt.Equals, uint8(0))

	ops := bus.Transactions()
	c.Assert(ops[0].Data, qt.DeepEquals, []byte{0x80})
	c.Assert(ops[2].Data, qt.DeepEquals, []byte{0x00})
}

func TestReadAll(t *testing.T) {
	c := qt.New(t)
	d, bus, fake := newTestDevice(c)
	d.Configure(Config{Century: 2000})
	copy(fake.Registers[:], []byte{0x05, 0x04, 0x63, 0x05, 0x13, 0x06, 0x25})

	dt, err := d.ReadAll()
	c.Assert(err, qt.IsNil)
	want := DateTime{
		Year:    2025,
		Century: 2000,
		Month:   June,
		Date:    13,
		Weekday: Friday,
		Hour:    3,
		Minute:  4,
		Second:  5,
		Format:  Format12H,
		Period:  PM,
	}
	if diff := cmp.Diff(want, dt); diff != "" {
		c.Fatalf("unexpected snapshot (-want +got):\n%s", diff)
	}
	c.Assert(d.State(), qt.Equals, want)
	c.Assert(dt.Hour24(), qt.Equals, uint8(15))

	var regs []uint8
	for _, op := range bus.Transactions() {
		c.Assert(op.Op, qt.Equals, tester.Read)
		regs = append(regs, op.Reg)
	}
	c.Assert(regs, qt.DeepEquals, []uint8{
		uint8(RegYear), uint8(RegMonth), uint8(RegDate), uint8(RegDay),
		uint8(RegHours), uint8(RegMinutes), uint8(RegSeconds),
	})
}

func TestSetAndNow(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	fake.Registers[RegSeconds] = clockHalt

	when := time.Date(2025, time.June, 13, 15, 4, 5, 0, time.UTC)
	c.Assert(d.Set(when), qt.IsNil)
	c.Assert(fake.Registers[:8], qt.DeepEquals, []uint8{0x05, 0x04, 0x15, 0x05, 0x13, 0x06, 0x25, 0x00})

	now, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(now, qt.Equals, when)
}

func TestSetRoundsAndConvertsToUTC(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)

	loc := time.FixedZone("UTC+2", 2*60*60)
	c.Assert(d.Set(time.Date(2024, time.February, 29, 1, 59, 59, 600e6, loc)), qt.IsNil)
	c.Assert(fake.Registers[RegHours], qt.Equals, uint8(0x00))
	c.Assert(fake.Registers[RegMinutes], qt.Equals, uint8(0x00))
	c.Assert(fake.Registers[RegSeconds], qt.Equals, uint8(0x00))
	c.Assert(fake.Registers[RegDate], qt.Equals, uint8(0x29))
	c.Assert(fake.Registers[RegDay], qt.Equals, uint8(Thursday))
}

func TestSetAndNow12H(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	fake.Registers[RegHours] = hour12 | 0x01
	_, err := d.ReadHour()
	c.Assert(err, qt.IsNil)

	when := time.Date(2031, time.January, 5, 23, 59, 0, 0, time.UTC)
	c.Assert(d.Set(when), qt.IsNil)
	c.Assert(fake.Registers[RegHours], qt.Equals, uint8(0x71))

	now, err := d.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(now, qt.Equals, when)
}

func TestTransportErrors(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)
	c.Assert(d.SetMinute(10), qt.IsNil)

	fake.FailAt(tester.Write, uint8(RegMinutes), drivers.ErrTimeout)
	err := d.SetMinute(20)
	c.Assert(err, qt.ErrorIs, drivers.ErrTimeout)
	c.Assert(err, qt.ErrorMatches, `ds1307: write minutes: i2c: timeout`)
	var rerr *Error
	c.Assert(errors.As(err, &rerr), qt.IsTrue)
	c.Assert(rerr.Reg, qt.Equals, RegMinutes)
	c.Assert(d.State().Minute, qt.Equals, uint8(10))
	c.Assert(fake.Registers[RegMinutes], qt.Equals, uint8(0x10))

	fake.FailAt(tester.Read, uint8(RegYear), drivers.ErrBus)
	_, err = d.ReadAll()
	c.Assert(err, qt.ErrorIs, drivers.ErrBus)
}

func TestNoDevice(t *testing.T) {
	c := qt.New(t)
	d := New(tester.NewI2CBus(c))
	_, err := d.Now()
	c.Assert(err, qt.ErrorIs, drivers.ErrNack)
	c.Assert(err, qt.ErrorMatches, `ds1307: read year: .*`)
}

func TestSquareWave(t *testing.T) {
	c := qt.New(t)
	d, _, fake := newTestDevice(c)

	c.Assert(d.SetSquareWave(SquareWave{Enabled: true, Rate: Rate32768Hz}), qt.IsNil)
	c.Assert(fake.Registers[RegControl], qt.Equals, uint8(0x13))

	c.Assert(d.SetSquareWave(SquareWave{Rate: Rate4096Hz, OutHigh: true}), qt.IsNil)
	c.Assert(fake.Registers[RegControl], qt.Equals, uint8(0x81))

	fake.Registers[RegControl] = 0x12
	sw, err := d.SquareWave()
	c.Assert(err, qt.IsNil)
	c.Assert(sw, qt.Equals, SquareWave{Enabled: true, Rate: Rate8192Hz})
}

func TestRAM(t *testing.T) {
	c := qt.New(t)
	d, bus, fake := newTestDevice(c)

	c.Assert(d.WriteRAM(0, []byte("hello")), qt.IsNil)
	c.Assert(string(fake.Registers[RAMStart:RAMStart+5]), qt.Equals, "hello")
	c.Assert(bus.Transactions(), qt.HasLen, 1)

	buf := make([]byte, 5)
	c.Assert(d.ReadRAM(0, buf), qt.IsNil)
	c.Assert(string(buf), qt.Equals, "hello")

	c.Assert(d.WriteRAM(RAMSize-1, []byte{0xAA}), qt.IsNil)
	c.Assert(fake.Registers[tester.NumRegisters-1], qt.Equals, uint8(0xAA))

	c.Assert(d.WriteRAM(50, make([]byte, 7)), qt.Equals, ErrRAMRange)
	c.Assert(d.ReadRAM(RAMSize, make([]byte, 1)), qt.Equals, ErrRAMRange)
	c.Assert(d.ReadRAM(RAMSize, nil), qt.Equals, ErrRAMRange)
	c.Assert(d.WriteRAM(RAMSize, nil), qt.Equals, ErrRAMRange)
	c.Assert(d.ReadRAM(RAMSize-1, nil), qt.IsNil)
	c.Assert(bus.Transactions(), qt.HasLen, 4)
}

func TestRegisterString(t *testing.T) {
	c := qt.New(t)
	c.Assert(RegHours.String(), qt.Equals, "hours")
	c.Assert((RAMStart + 3).String(), qt.Equals, "ram[3]")
	c.Assert(Register(0x40).String(), qt.Equals, "register 0x40")
}
