package drivers

import "time"

// Clock is a real-time clock that can report and accept the current time.
type Clock interface {
	Now() (time.Time, error)
	Set(t time.Time) error
}
