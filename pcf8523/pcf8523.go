// Package pcf8523 implements a driver for the PCF8523 Real-Time Clock (RTC), providing basic read-write of the current
// time only. The PCF8523 itself supports alarms, clock drift compensation, and timer interrupts, but those features
// remain unimplemented.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF8523.pdf
package pcf8523

import (
	"fmt"
	"time"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/bcd"
)

// century is added to the two-digit year; times outside 2000-2099 cannot be stored.
const century = 2000

type Device struct {
	bus     drivers.I2C
	Address uint8
}

var _ drivers.Clock = (*Device)(nil)

func New(i2c drivers.I2C) *Device {
	return &Device{
		bus:     i2c,
		Address: Address,
	}
}

// LostPower reports whether the oscillator stopped since the time was last set, meaning the time cannot be
// trusted.
func (d *Device) LostPower() (bool, error) {
	v, err := d.read8(Status)
	if err != nil {
		return false, err
	}
	return v&oscillatorStopped != 0, nil
}

// Initialized reports whether battery switchover has been configured since the last power-on reset.
func (d *Device) Initialized() (bool, error) {
	v, err := d.read8(Control3)
	if err != nil {
		return false, err
	}
	return v&batterySwitchover != batterySwitchover, nil
}

// Set writes t, converted to UTC, in 24-hour mode and makes sure the clock is running.
func (d *Device) Set(t time.Time) error {
	t = t.UTC()
	if t.Year() < century || t.Year() >= century+100 {
		return fmt.Errorf("pcf8523: year %d out of range", t.Year())
	}
	ctrl, err := d.read8(Control1)
	if err != nil {
		return err
	}
	// do not change cap_sel or second/alarm/correction interrupts
	// ensure RTC is running and 24-hour mode is selected
	if err := d.write(Control1, ctrl&control1Keep); err != nil {
		return err
	}

	err = d.write(Time,
		bcd.Encode(uint8(t.Second())),
		bcd.Encode(uint8(t.Minute())),
		bcd.Encode(uint8(t.Hour())),
		bcd.Encode(uint8(t.Day())),
		bcd.Encode(uint8(t.Weekday())),
		bcd.Encode(uint8(t.Month())),
		bcd.Encode(uint8(t.Year()-century)),
	)
	if err != nil {
		return err
	}
	// turn on battery switchover mode, turn off battery-related interrupts
	return d.write(Control3, 0)
}

// Now reads the current time in UTC.
func (d *Device) Now() (time.Time, error) {
	buf := [7]byte{}
	if err := d.bus.ReadRegister(d.Address, Time, buf[:]); err != nil {
		return time.Time{}, fmt.Errorf("pcf8523: read time: %w", err)
	}

	seconds := bcd.Decode(buf[0] & 0x7F)
	minute := bcd.Decode(buf[1] & 0x7F)
	hour := bcd.Decode(buf[2] & 0x3F)
	day := bcd.Decode(buf[3] & 0x3F)
	// we don't need to read the weekday
	month := time.Month(bcd.Decode(buf[5] & 0x1F))
	year := int(bcd.Decode(buf[6])) + century

	return time.Date(year, month, int(day), int(hour), int(minute), int(seconds), 0, time.UTC), nil
}

func (d *Device) read8(reg uint8) (uint8, error) {
	buf := [1]byte{}
	if err := d.bus.ReadRegister(d.Address, reg, buf[:]); err != nil {
		return 0, fmt.Errorf("pcf8523: read register %#02x: %w", reg, err)
	}
	return buf[0], nil
}

func (d *Device) write(reg uint8, data ...uint8) error {
	if err := d.bus.WriteRegister(d.Address, reg, data); err != nil {
		return fmt.Errorf("pcf8523: write register %#02x: %w", reg, err)
	}
	return nil
}
