package drivers

import "errors"

// Errors reported by I2C buses. Bus implementations wrap their native failures so that callers can tell these
// apart with errors.Is; a nil error means the transfer completed.
var (
	// ErrBus is a generic bus failure: arbitration lost, bus stuck, driver error.
	ErrBus = errors.New("i2c: bus error")
	// ErrNack means the device did not acknowledge its address or a data byte.
	ErrNack = errors.New("i2c: no acknowledge")
	// ErrTimeout means the transfer did not complete in time.
	ErrTimeout = errors.New("i2c: timeout")
)
