package ds1307

import (
	"fmt"
	"time"
)

// HourFormat selects how the hours register is encoded.
type HourFormat uint8

const (
	Format24H HourFormat = iota
	Format12H
)

func (f HourFormat) String() string {
	switch f {
	case Format24H:
		return "24h"
	case Format12H:
		return "12h"
	}
	return fmt.Sprintf("HourFormat(%d)", uint8(f))
}

// Period is the half of the day of a 12-hour time. It is NoPeriod whenever the format is Format24H.
type Period uint8

const (
	NoPeriod Period = iota
	AM
	PM
)

func (p Period) String() string {
	switch p {
	case NoPeriod:
		return ""
	case AM:
		return "AM"
	case PM:
		return "PM"
	}
	return fmt.Sprintf("Period(%d)", uint8(p))
}

// Weekday is the day of the week as stored by the chip, Monday = 1 through Sunday = 7.
type Weekday uint8

const (
	UnknownWeekday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf converts a time.Weekday, which counts from Sunday = 0, to the chip's numbering.
func WeekdayOf(w time.Weekday) Weekday {
	if w == time.Sunday {
		return Sunday
	}
	return Weekday(w)
}

// Weekday returns w as a time.Weekday. UnknownWeekday maps to time.Sunday.
func (w Weekday) Weekday() time.Weekday {
	if w == Sunday || w == UnknownWeekday {
		return time.Sunday
	}
	return time.Weekday(w)
}

func (w Weekday) String() string {
	if w == UnknownWeekday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", uint8(w))
	}
	return w.Weekday().String()
}

// decodeWeekday validates a decoded day register.
func decodeWeekday(v uint8) Weekday {
	if v < uint8(Monday) || v > uint8(Sunday) {
		return UnknownWeekday
	}
	return Weekday(v)
}

// Month is the month of the year, January = 1.
type Month uint8

const (
	UnknownMonth Month = iota
	January
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

func (m Month) String() string {
	if m == UnknownMonth || m > December {
		return fmt.Sprintf("Month(%d)", uint8(m))
	}
	return time.Month(m).String()
}

// decodeMonth validates a decoded month register.
func decodeMonth(v uint8) Month {
	if v < uint8(January) || v > uint8(December) {
		return UnknownMonth
	}
	return Month(v)
}

// DateTime is a snapshot of the date and time fields cached by a Device.
//
// Hour is in the range 0-23 when Format is Format24H and 1-12 when Format is Format12H, in which case Period tells
// AM from PM. Year is always Century plus the two digits held by the chip.
type DateTime struct {
	Year    uint16
	Century uint16
	Month   Month
	Date    uint8
	Weekday Weekday
	Hour    uint8
	Minute  uint8
	Second  uint8
	Format  HourFormat
	Period  Period
}

// Hour24 returns the hour in the range 0-23 regardless of the format.
func (dt DateTime) Hour24() uint8 {
	if dt.Format == Format12H {
		return to24Hour(dt.Hour, dt.Period)
	}
	return dt.Hour
}

// Time returns dt as a UTC time. No calendar validation is done, so out-of-range fields are normalized the way
// time.Date normalizes them.
func (dt DateTime) Time() time.Time {
	return time.Date(int(dt.Year), time.Month(dt.Month), int(dt.Date),
		int(dt.Hour24()), int(dt.Minute), int(dt.Second), 0, time.UTC)
}

func (dt DateTime) String() string {
	s := fmt.Sprintf("%04d-%02d-%02d %v %02d:%02d:%02d",
		dt.Year, uint8(dt.Month), dt.Date, dt.Weekday, dt.Hour, dt.Minute, dt.Second)
	if dt.Format == Format12H {
		s += " " + dt.Period.String()
	}
	return s
}
