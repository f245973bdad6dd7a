package ds1307

import "fmt"

const (
	Address      = 0x68         // 7-bit I2C address of the DS1307
	WriteAddress = Address << 1 // 0xD0, address byte of a write on the wire
	ReadAddress  = WriteAddress | 1
)

// Register is the address of a DS1307 register.
type Register uint8

const (
	RegSeconds Register = 0x00 // CH bit + BCD seconds
	RegMinutes Register = 0x01
	RegHours   Register = 0x02 // 12/24 marker, AM/PM, BCD hour
	RegDay     Register = 0x03 // day of the week, 1-7
	RegDate    Register = 0x04 // day of the month
	RegMonth   Register = 0x05
	RegYear    Register = 0x06 // last two digits only
	RegControl Register = 0x07 // square wave output
	RAMStart   Register = 0x08 // battery-backed RAM, through 0x3F
)

// RAMSize is the number of bytes of battery-backed RAM.
const RAMSize = 56

// register bits
const (
	clockHalt   = 1 << 7 // seconds: oscillator stopped
	secondsMask = 0x7F

	hour12     = 1 << 6 // hours: 12-hour mode
	hourPM     = 1 << 5 // hours: PM, 12-hour mode only
	hour24Mask = 0x3F
	hour12Mask = 0x1F

	ctrlOut  = 1 << 7 // control: output level while the square wave is off
	ctrlSQWE = 1 << 4 // control: square wave enable
	ctrlRate = 0x03
)

var registerNames = [...]string{
	RegSeconds: "seconds",
	RegMinutes: "minutes",
	RegHours:   "hours",
	RegDay:     "day",
	RegDate:    "date",
	RegMonth:   "month",
	RegYear:    "year",
	RegControl: "control",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	if r < RAMStart+RAMSize {
		return fmt.Sprintf("ram[%d]", int(r-RAMStart))
	}
	return fmt.Sprintf("register %#02x", uint8(r))
}
