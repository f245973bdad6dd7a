package bcd_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/drivers/bcd"
)

func TestRoundTrip(t *testing.T) {
	c := qt.New(t)
	for v := 0; v <= 99; v++ {
		c.Assert(bcd.Decode(bcd.Encode(uint8(v))), qt.Equals, uint8(v), qt.Commentf("value %d", v))
	}
}

func TestEncode(t *testing.T) {
	c := qt.New(t)
	c.Assert(bcd.Encode(0), qt.Equals, uint8(0x00))
	c.Assert(bcd.Encode(9), qt.Equals, uint8(0x09))
	c.Assert(bcd.Encode(10), qt.Equals, uint8(0x10))
	c.Assert(bcd.Encode(59), qt.Equals, uint8(0x59))
	c.Assert(bcd.Encode(99), qt.Equals, uint8(0x99))
}

func TestDecodeMalformed(t *testing.T) {
	c := qt.New(t)
	// 0xFF is not valid BCD; the decoder does not reject it.
	c.Assert(bcd.Decode(0xFF), qt.Equals, uint8(165))
	c.Assert(bcd.Decode(0x1A), qt.Equals, uint8(20))
}
