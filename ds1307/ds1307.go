// Package ds1307 implements a driver for the DS1307 Real-Time Clock (RTC).
//
// The driver keeps an in-memory copy of the date and time fields and the hour format. Every Set method writes one
// register and, once the write succeeds, updates the copy; every Read method reads one register and refreshes the
// copy from it. The copy goes stale as soon as the chip ticks or something else writes to it; call ReadAll to
// refresh everything.
//
// The chip only stores the last two digits of the year. The century is kept by the Device, primed either by
// Config.Century or by SetYear. A Device that has only ever read the chip reports years in the range 0-99.
//
// A Device is not safe for concurrent use.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS1307.pdf
package ds1307

import (
	"fmt"
	"time"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/bcd"
)

// Device wraps an I2C connection to a DS1307.
type Device struct {
	bus     drivers.I2C
	Address uint8

	century uint16
	year    uint16
	month   Month
	date    uint8
	weekday Weekday
	hour    uint8
	minute  uint8
	second  uint8
	format  HourFormat
	period  Period
}

var _ drivers.Clock = (*Device)(nil)

// Config holds the optional settings applied by Configure.
type Config struct {
	// Address defaults to 0x68, the only address the DS1307 answers to.
	Address uint8
	// Century is added to the two-digit year read from the chip until SetYear replaces it.
	Century uint16
}

// New creates a new DS1307 driver on the provided I2C bus. The DS1307 supports 100 kHz only.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure applies c. It does not talk to the chip.
func (d *Device) Configure(c Config) {
	if c.Address == 0 {
		c.Address = Address
	}
	d.Address = c.Address
	d.century = c.Century
	d.year = d.century + d.year%100
}

// Error records a failed register transfer.
type Error struct {
	Op  string // "read" or "write"
	Reg Register
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ds1307: %s %v: %v", e.Op, e.Reg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// State returns the cached date and time without touching the chip.
func (d *Device) State() DateTime {
	return DateTime{
		Year:    d.year,
		Century: d.century,
		Month:   d.month,
		Date:    d.date,
		Weekday: d.weekday,
		Hour:    d.hour,
		Minute:  d.minute,
		Second:  d.second,
		Format:  d.format,
		Period:  d.period,
	}
}

// SetSecond writes the seconds register. This clears the CH bit, so it also starts the oscillator.
func (d *Device) SetSecond(second uint8) error {
	if err := d.write8(RegSeconds, bcd.Encode(second)); err != nil {
		return err
	}
	d.second = second
	return nil
}

// ReadSecond reads the seconds register, ignoring the CH bit.
func (d *Device) ReadSecond() (uint8, error) {
	v, err := d.read8(RegSeconds)
	if err != nil {
		return 0, err
	}
	d.second = bcd.Decode(v & secondsMask)
	return d.second, nil
}

func (d *Device) SetMinute(minute uint8) error {
	if err := d.write8(RegMinutes, bcd.Encode(minute)); err != nil {
		return err
	}
	d.minute = minute
	return nil
}

func (d *Device) ReadMinute() (uint8, error) {
	v, err := d.read8(RegMinutes)
	if err != nil {
		return 0, err
	}
	d.minute = bcd.Decode(v)
	return d.minute, nil
}

// SetDate writes the day of the month. Impossible dates such as February 30 are not rejected.
func (d *Device) SetDate(date uint8) error {
	if err := d.write8(RegDate, bcd.Encode(date)); err != nil {
		return err
	}
	d.date = date
	return nil
}

func (d *Device) ReadDate() (uint8, error) {
	v, err := d.read8(RegDate)
	if err != nil {
		return 0, err
	}
	d.date = bcd.Decode(v)
	return d.date, nil
}

// SetWeekday writes the day of the week. The chip increments it at midnight and does not check it against the
// date.
func (d *Device) SetWeekday(day Weekday) error {
	if err := d.write8(RegDay, bcd.Encode(uint8(day))); err != nil {
		return err
	}
	d.weekday = day
	return nil
}

// ReadWeekday reads the day of the week. Register contents outside 1-7 are reported as UnknownWeekday.
func (d *Device) ReadWeekday() (Weekday, error) {
	v, err := d.read8(RegDay)
	if err != nil {
		return UnknownWeekday, err
	}
	d.weekday = decodeWeekday(bcd.Decode(v))
	return d.weekday, nil
}

func (d *Device) SetMonth(month Month) error {
	if err := d.write8(RegMonth, bcd.Encode(uint8(month))); err != nil {
		return err
	}
	d.month = month
	return nil
}

// ReadMonth reads the month. Register contents outside 1-12 are reported as UnknownMonth.
func (d *Device) ReadMonth() (Month, error) {
	v, err := d.read8(RegMonth)
	if err != nil {
		return UnknownMonth, err
	}
	d.month = decodeMonth(bcd.Decode(v))
	return d.month, nil
}

// SetYear writes the last two digits of year to the chip and remembers the rest as the century.
func (d *Device) SetYear(year uint16) error {
	yy := uint8(year % 100)
	if err := d.write8(RegYear, bcd.Encode(yy)); err != nil {
		return err
	}
	d.century = year - uint16(yy)
	d.year = year
	return nil
}

// ReadYear reads the two-digit year and adds the remembered century. The century is not advanced when the chip rolls
// over from 99 to 00: after SetYear(2099) and a rollover, ReadYear reports 2000.
func (d *Device) ReadYear() (uint16, error) {
	v, err := d.read8(RegYear)
	if err != nil {
		return 0, err
	}
	d.year = d.century + uint16(bcd.Decode(v))
	return d.year, nil
}

// SetClockHalt stops (halt is true) or starts the oscillator.
//
// The CH bit shares a register with the seconds and the chip has no way to write it alone, so this overwrites the
// whole register with 0x80 or 0x00: the seconds reset to 0 either way.
func (d *Device) SetClockHalt(halt bool) error {
	var v uint8
	if halt {
		v = clockHalt
	}
	if err := d.write8(RegSeconds, v); err != nil {
		return err
	}
	d.second = 0
	return nil
}

// Halted reports whether the oscillator is stopped. The DS1307 powers up halted.
func (d *Device) Halted() (bool, error) {
	v, err := d.read8(RegSeconds)
	if err != nil {
		return false, err
	}
	return v&clockHalt != 0, nil
}

// ReadAll refreshes every date and time field, one register at a time, in the order year, month, date, weekday,
// hour, minute, second. The reads are separate transactions, so a rollover between two of them yields a torn
// value. It stops at the first failure.
func (d *Device) ReadAll() (DateTime, error) {
	if _, err := d.ReadYear(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadMonth(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadDate(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadWeekday(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadHour(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadMinute(); err != nil {
		return DateTime{}, err
	}
	if _, err := d.ReadSecond(); err != nil {
		return DateTime{}, err
	}
	return d.State(), nil
}

// Now reads the chip and returns the current time in UTC, accurate to the second.
func (d *Device) Now() (time.Time, error) {
	dt, err := d.ReadAll()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(), nil
}

// Set writes t, rounded to the nearest second and converted to UTC, to the chip in its current hour format. The
// oscillator is running afterwards.
func (d *Device) Set(t time.Time) error {
	t = t.UTC().Round(time.Second)
	return d.writeAll(DateTime{
		Year:    uint16(t.Year()),
		Month:   Month(t.Month()),
		Date:    uint8(t.Day()),
		Weekday: WeekdayOf(t.Weekday()),
		Hour:    uint8(t.Hour()),
		Minute:  uint8(t.Minute()),
		Second:  uint8(t.Second()),
	})
}

// writeAll writes every field of dt, one register at a time, seconds last. dt.Hour must be a 24-hour value. There
// is no rollback: after a failure the chip holds a mix of old and new values.
func (d *Device) writeAll(dt DateTime) error {
	if err := d.SetYear(dt.Year); err != nil {
		return err
	}
	if err := d.SetMonth(dt.Month); err != nil {
		return err
	}
	if err := d.SetDate(dt.Date); err != nil {
		return err
	}
	if err := d.SetWeekday(dt.Weekday); err != nil {
		return err
	}
	if err := d.SetHour(dt.Hour); err != nil {
		return err
	}
	if err := d.SetMinute(dt.Minute); err != nil {
		return err
	}
	return d.SetSecond(dt.Second)
}

func (d *Device) read8(reg Register) (uint8, error) {
	buf := [1]byte{}
	if err := d.bus.ReadRegister(d.Address, uint8(reg), buf[:]); err != nil {
		return 0, &Error{Op: "read", Reg: reg, Err: err}
	}
	return buf[0], nil
}

func (d *Device) write8(reg Register, val uint8) error {
	buf := [1]byte{val}
	if err := d.bus.WriteRegister(d.Address, uint8(reg), buf[:]); err != nil {
		return &Error{Op: "write", Reg: reg, Err: err}
	}
	return nil
}
