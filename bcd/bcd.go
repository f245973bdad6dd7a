// Package bcd converts between binary and the packed binary-coded decimal used by RTC time registers: the tens
// digit in the high nibble, the units digit in the low nibble.
package bcd

// Encode converts v, in the range 0-99, to packed BCD. Larger values overflow into the high nibble and produce
// undefined register contents; they are not rejected.
func Encode(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// Decode converts a packed BCD byte to binary. Nibbles above 9 are not rejected, so malformed input can decode to
// values above 99.
func Decode(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}
