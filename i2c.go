// Package drivers holds the interfaces shared by the device drivers in this module.
package drivers

// I2C represents an I2C bus. It is notably implemented by the machine.I2C type under TinyGo and by i2cdev.Bus on
// Linux hosts.
//
// Addresses are 7-bit; the bus implementation appends the R/W bit on the wire.
type I2C interface {
	// ReadRegister reads len(buf) bytes from the device at addr, starting at register r.
	ReadRegister(addr uint8, r uint8, buf []byte) error
	// WriteRegister writes buf to the device at addr, starting at register r.
	WriteRegister(addr uint8, r uint8, buf []byte) error
}
