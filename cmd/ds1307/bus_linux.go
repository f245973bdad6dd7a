package main

import (
	"io"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/i2cdev"
)

func openBus(path string) (drivers.I2C, io.Closer, error) {
	bus := i2cdev.Open(path)
	return bus, bus, nil
}
