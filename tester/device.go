package tester

// NumRegisters is the size of the register file of a fake device. Multi-byte accesses wrap around at the end, as
// they do on the DS1307.
const NumRegisters = 64

type failure struct {
	op  Op
	reg uint8
}

// I2CDevice is a fake device with a flat file of 8-bit registers.
type I2CDevice struct {
	c    Failer
	Addr uint8
	// Registers holds the current register contents. Tests may read and modify it directly.
	Registers [NumRegisters]uint8

	failures map[failure]error
}

// NewI2CDevice returns a device at addr with all registers zeroed.
func NewI2CDevice(c Failer, addr uint8) *I2CDevice {
	return &I2CDevice{
		c:        c,
		Addr:     addr,
		failures: make(map[failure]error),
	}
}

// FailAt makes every subsequent op transaction that starts at reg fail with err, leaving the registers untouched.
// A nil err removes the failure.
func (d *I2CDevice) FailAt(op Op, reg uint8, err error) {
	if err == nil {
		delete(d.failures, failure{op, reg})
		return
	}
	d.failures[failure{op, reg}] = err
}

func (d *I2CDevice) read(r uint8, buf []byte) error {
	d.checkReg(r)
	if err := d.failures[failure{Read, r}]; err != nil {
		return err
	}
	for i := range buf {
		buf[i] = d.Registers[(int(r)+i)%NumRegisters]
	}
	return nil
}

func (d *I2CDevice) write(r uint8, buf []byte) error {
	d.checkReg(r)
	if err := d.failures[failure{Write, r}]; err != nil {
		return err
	}
	for i, b := range buf {
		d.Registers[(int(r)+i)%NumRegisters] = b
	}
	return nil
}

func (d *I2CDevice) checkReg(r uint8) {
	d.c.Helper()
	if int(r) >= NumRegisters {
		d.c.Fatalf("register %#02x out of range on device %#02x", r, d.Addr)
	}
}
