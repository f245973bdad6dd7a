package ds1307

import (
	"errors"
	"fmt"

	"github.com/ajanata/drivers/bcd"
)

// SetHour writes the hour. hour is always given in 24-hour form, 0-23, whatever the current format; in 12-hour
// format it is converted, so 13 is written as 1 PM and 0 as 12 AM.
//
// The format used is the one last read from or written to the chip. Use SetTimeFormat to change it.
func (d *Device) SetHour(hour uint8) error {
	if d.format == Format12H {
		h, p := to12Hour(hour)
		if err := d.write8(RegHours, encodeHour12(h, p)); err != nil {
			return err
		}
		d.hour, d.period = h, p
		return nil
	}
	if err := d.write8(RegHours, bcd.Encode(hour)); err != nil {
		return err
	}
	d.hour, d.period = hour, NoPeriod
	return nil
}

// ReadHour reads the hours register, which also carries the hour format and, in 12-hour format, AM/PM; all three are
// cached. The returned hour is in the chip's format: 1-12 in 12-hour format.
func (d *Device) ReadHour() (uint8, error) {
	v, err := d.read8(RegHours)
	if err != nil {
		return 0, err
	}
	d.format = decodeFormat(v)
	if d.format == Format12H {
		d.period = decodePeriod(v)
		d.hour = bcd.Decode(v & hour12Mask)
	} else {
		d.period = NoPeriod
		d.hour = bcd.Decode(v & hour24Mask)
	}
	return d.hour, nil
}

// Format returns the cached hour format.
func (d *Device) Format() HourFormat {
	return d.format
}

// SetTimeFormat switches the chip between 12-hour and 24-hour format.
//
// The hours register is read first; if the chip is already in format f nothing else happens. Otherwise the
// oscillator is halted, the cached hour is converted, and every date and time field is written back from the cache
// in the order year, month, date, weekday, hour, minute, second, which restarts the oscillator. Only the hour is
// refreshed from the chip, so call ReadAll beforehand unless the cache is known to be current.
//
// The switch costs one or two seconds of timekeeping. Callers needing precise time should Set it again afterwards.
// A failure part way through leaves the chip with a mix of old and new values. The cached format follows the hours
// register: it is the new format only if the hour was written.
func (d *Device) SetTimeFormat(f HourFormat) error {
	if f != Format12H && f != Format24H {
		return fmt.Errorf("ds1307: invalid hour format %v", f)
	}
	if _, err := d.ReadHour(); err != nil {
		return err
	}
	if d.format == f {
		return nil
	}
	dt := d.State()
	if err := d.SetClockHalt(true); err != nil {
		return err
	}
	if d.format == Format12H {
		dt.Hour = to24Hour(dt.Hour, dt.Period)
	}
	// SetHour converts the 24-hour value to the new format.
	prev := d.format
	d.format = f
	if err := d.writeAll(dt); err != nil {
		var rerr *Error
		if errors.As(err, &rerr) && rerr.Reg != RegMinutes && rerr.Reg != RegSeconds {
			// The hours register still holds the old format.
			d.format = prev
		}
		return err
	}
	return nil
}

func decodeFormat(v uint8) HourFormat {
	if v&hour12 != 0 {
		return Format12H
	}
	return Format24H
}

func decodePeriod(v uint8) Period {
	if v&hourPM != 0 {
		return PM
	}
	return AM
}

// to12Hour converts a 24-hour value. Out-of-range input is not rejected: 24 becomes 12 AM, 25 and above keep their
// excess over 12 and become PM.
func to12Hour(hour uint8) (uint8, Period) {
	switch {
	case hour > 11:
		h := hour - 12
		switch h {
		case 0:
			return 12, PM
		case 12:
			// Only reached for hour == 24.
			return 12, AM
		default:
			return h, PM
		}
	case hour == 0:
		return 12, AM
	default:
		return hour, AM
	}
}

// to24Hour converts a 12-hour value. Anything other than PM is treated as AM.
func to24Hour(hour uint8, p Period) uint8 {
	switch {
	case p == PM && hour != 12:
		return hour + 12
	case p != PM && hour == 12:
		return 0
	}
	return hour
}

func encodeHour12(hour uint8, p Period) uint8 {
	v := hour12 | bcd.Encode(hour)
	if p == PM {
		v |= hourPM
	}
	return v
}
