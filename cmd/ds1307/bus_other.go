//go:build !linux

package main

import (
	"errors"
	"io"

	"github.com/ajanata/drivers"
)

func openBus(path string) (drivers.I2C, io.Closer, error) {
	return nil, nil, errors.New("I2C character devices are only supported on linux")
}
