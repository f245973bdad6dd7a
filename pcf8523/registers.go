package pcf8523

const (
	Address           = 0x68 // I2C address for PCF8523
	Control1          = 0x00 // Control and status register 1
	Control2          = 0x01 // Control and status register 2
	Control3          = 0x02 // Control and status register 3
	Time              = 0x03 // Time registers starting with seconds
	Status            = 0x03 // Status register, also hold seconds
	Offset            = 0x0E // Offset register
	ClkOutControl     = 0x0F // Timer and CLKOUT control register
	TimerBFreqControl = 0x12 // Timer B source clock frequency control
	TimerBValue       = 0x13 // Timer B value (number clock periods)
)

const (
	oscillatorStopped = 1 << 7 // seconds: clock integrity not guaranteed
	batterySwitchover = 0xE0   // Control3: PM bits, all set after power-on reset

	// Control1 bits kept by Set: CAP_SEL and the interrupt enables. STOP and 12_24 are cleared.
	control1Keep = 0b1000_0111
)
