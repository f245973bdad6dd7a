package ds1307

import (
	"errors"
	"fmt"
)

// Rate is the frequency of the SQW/OUT pin when the square wave is enabled.
type Rate uint8

const (
	Rate1Hz Rate = iota
	Rate4096Hz
	Rate8192Hz
	Rate32768Hz
)

func (r Rate) String() string {
	switch r {
	case Rate1Hz:
		return "1Hz"
	case Rate4096Hz:
		return "4.096kHz"
	case Rate8192Hz:
		return "8.192kHz"
	case Rate32768Hz:
		return "32.768kHz"
	}
	return fmt.Sprintf("Rate(%d)", uint8(r))
}

// SquareWave is the configuration held in the control register.
type SquareWave struct {
	Enabled bool
	Rate    Rate
	// OutHigh is the level of the SQW/OUT pin while the square wave is disabled.
	OutHigh bool
}

// SetSquareWave writes the control register.
func (d *Device) SetSquareWave(sw SquareWave) error {
	v := uint8(sw.Rate) & ctrlRate
	if sw.Enabled {
		v |= ctrlSQWE
	}
	if sw.OutHigh {
		v |= ctrlOut
	}
	return d.write8(RegControl, v)
}

// SquareWave reads the control register.
func (d *Device) SquareWave() (SquareWave, error) {
	v, err := d.read8(RegControl)
	if err != nil {
		return SquareWave{}, err
	}
	return SquareWave{
		Enabled: v&ctrlSQWE != 0,
		Rate:    Rate(v & ctrlRate),
		OutHigh: v&ctrlOut != 0,
	}, nil
}

// ErrRAMRange is returned for RAM accesses that do not fit in the 56 bytes of RAM, including empty accesses that
// start past its end.
var ErrRAMRange = errors.New("ds1307: RAM access out of range")

// ReadRAM reads len(buf) bytes of battery-backed RAM starting at offset, in a single transaction.
func (d *Device) ReadRAM(offset uint8, buf []byte) error {
	if int(offset) >= RAMSize || int(offset)+len(buf) > RAMSize {
		return ErrRAMRange
	}
	reg := RAMStart + Register(offset)
	if err := d.bus.ReadRegister(d.Address, uint8(reg), buf); err != nil {
		return &Error{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

// WriteRAM writes buf to battery-backed RAM starting at offset, in a single transaction.
func (d *Device) WriteRAM(offset uint8, buf []byte) error {
	if int(offset) >= RAMSize || int(offset)+len(buf) > RAMSize {
		return ErrRAMRange
	}
	reg := RAMStart + Register(offset)
	if err := d.bus.WriteRegister(d.Address, uint8(reg), buf); err != nil {
		return &Error{Op: "write", Reg: reg, Err: err}
	}
	return nil
}
