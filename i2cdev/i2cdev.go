//go:build linux

// Package i2cdev adapts the Linux I2C character devices (/dev/i2c-N) to the drivers.I2C interface, so the drivers in
// this module can run on a Raspberry Pi or any other host with an I2C adapter.
package i2cdev

import (
	"errors"
	"fmt"

	"golang.org/x/exp/io/i2c"
	"golang.org/x/exp/io/i2c/driver"
	"golang.org/x/sys/unix"

	"github.com/ajanata/drivers"
)

// Bus is an I2C adapter. A connection to each device address is opened on first use and kept until Close.
type Bus struct {
	opener  driver.Opener
	devices map[uint8]*i2c.Device
}

var _ drivers.I2C = (*Bus)(nil)

// Open returns a Bus using the character device at path, e.g. /dev/i2c-1. Nothing is opened until the first
// transfer.
func Open(path string) *Bus {
	return New(&i2c.Devfs{Dev: path})
}

// New returns a Bus that opens device connections with o.
func New(o driver.Opener) *Bus {
	return &Bus{
		opener:  o,
		devices: make(map[uint8]*i2c.Device),
	}
}

// ReadRegister implements drivers.I2C.
func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	dev, err := b.device(addr)
	if err != nil {
		return err
	}
	return classify(dev.ReadReg(r, buf))
}

// WriteRegister implements drivers.I2C.
func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	dev, err := b.device(addr)
	if err != nil {
		return err
	}
	return classify(dev.WriteReg(r, buf))
}

// Close closes every device connection opened so far. The Bus can be reused afterwards.
func (b *Bus) Close() error {
	var firstErr error
	for addr, dev := range b.devices {
		if err := dev.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(b.devices, addr)
	}
	return firstErr
}

func (b *Bus) device(addr uint8) (*i2c.Device, error) {
	if dev, ok := b.devices[addr]; ok {
		return dev, nil
	}
	dev, err := i2c.Open(b.opener, int(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open device %#02x: %v", drivers.ErrBus, addr, err)
	}
	b.devices[addr] = dev
	return dev, nil
}

// classify maps the errno of a failed transfer to one of the drivers error kinds.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENXIO), errors.Is(err, unix.EREMOTEIO):
		return fmt.Errorf("%w: %v", drivers.ErrNack, err)
	case errors.Is(err, unix.ETIMEDOUT):
		return fmt.Errorf("%w: %v", drivers.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", drivers.ErrBus, err)
}
