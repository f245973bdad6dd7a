// Package tester provides an in-memory I2C bus for testing device drivers without hardware.
package tester

import (
	"github.com/ajanata/drivers"
)

// Failer is the subset of testing.TB used to report misuse of the fake bus.
type Failer interface {
	Helper()
	Fatalf(format string, args ...interface{})
}

// Op is the direction of a bus transaction.
type Op uint8

const (
	Read Op = iota
	Write
)

func (op Op) String() string {
	if op == Write {
		return "write"
	}
	return "read"
}

// Transaction records one register access made through the bus.
type Transaction struct {
	Op   Op
	Addr uint8
	Reg  uint8
	// Data holds the bytes written, or the bytes returned by a read.
	Data []byte
	Err  error
}

// I2CBus implements drivers.I2C by dispatching to the fake devices added to it.
type I2CBus struct {
	c       Failer
	devices []*I2CDevice
	log     []Transaction
}

var _ drivers.I2C = (*I2CBus)(nil)

// NewI2CBus returns an empty bus.
func NewI2CBus(c Failer) *I2CBus {
	return &I2CBus{c: c}
}

// AddDevice attaches d to the bus. Two devices may not share an address.
func (b *I2CBus) AddDevice(d *I2CDevice) {
	b.c.Helper()
	if b.find(d.Addr) != nil {
		b.c.Fatalf("device already attached at address %#02x", d.Addr)
	}
	b.devices = append(b.devices, d)
}

// Transactions returns every transaction issued since the bus was created or last cleared.
func (b *I2CBus) Transactions() []Transaction {
	return append([]Transaction(nil), b.log...)
}

// ClearTransactions empties the transaction log.
func (b *I2CBus) ClearTransactions() {
	b.log = nil
}

// ReadRegister implements drivers.I2C. Addresses with no attached device return drivers.ErrNack.
func (b *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	d := b.find(addr)
	if d == nil {
		b.record(Read, addr, r, nil, drivers.ErrNack)
		return drivers.ErrNack
	}
	err := d.read(r, buf)
	var data []byte
	if err == nil {
		data = append(data, buf...)
	}
	b.record(Read, addr, r, data, err)
	return err
}

// WriteRegister implements drivers.I2C. Addresses with no attached device return drivers.ErrNack.
func (b *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	d := b.find(addr)
	if d == nil {
		b.record(Write, addr, r, buf, drivers.ErrNack)
		return drivers.ErrNack
	}
	err := d.write(r, buf)
	b.record(Write, addr, r, buf, err)
	return err
}

func (b *I2CBus) record(op Op, addr, reg uint8, data []byte, err error) {
	b.log = append(b.log, Transaction{
		Op:   op,
		Addr: addr,
		Reg:  reg,
		Data: append([]byte(nil), data...),
		Err:  err,
	})
}

func (b *I2CBus) find(addr uint8) *I2CDevice {
	for _, d := range b.devices {
		if d.Addr == addr {
			return d
		}
	}
	return nil
}
