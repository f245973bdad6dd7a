//go:build !linux

package main

import (
	"errors"
	"time"
)

func setSysTime(t time.Time) error {
	return errors.New("cannot set system time on this os")
}
