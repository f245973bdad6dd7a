// Command ds1307 reads and sets a DS1307 (or PCF8523) real-time clock attached to a Linux I2C adapter.
//
// Usage:
//
//	ds1307 [flags] [command [args...]]
//
// With no command it prints the current time. Run "ds1307 help" for the list of commands, or "ds1307 shell" for an
// interactive prompt.
//
// Flags:
//
//	-config string     YAML configuration file
//	-device string     I2C character device (default "/dev/i2c-1")
//	-chip string       clock chip: ds1307 or pcf8523 (default "ds1307")
//	-address uint      I2C address; 0 means the chip's default
//	-century uint      century added to the two-digit year (default 2000)
//	-log-level string  log level: debug, info, warn, error (default "info")
//	-broker string     MQTT broker URL for the publish command
//	-topic string      MQTT topic for the publish command (default "ds1307/time")
//
// Examples:
//
//	# Set the clock from the system time and switch it to 12-hour format
//	ds1307 set now
//	ds1307 format 12
//
//	# Set the system clock from the RTC at boot
//	ds1307 hctosys
//
//	# Publish the time every 10 seconds
//	ds1307 -broker tcp://localhost:1883 publish
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/ajanata/drivers"
	"github.com/ajanata/drivers/ds1307"
	"github.com/ajanata/drivers/pcf8523"
)

func main() {
	cfg, args, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := run(cfg, args, openBus, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// busOpener opens the I2C adapter at path. openBus is the platform's implementation.
type busOpener func(path string) (drivers.I2C, io.Closer, error)

func run(cfg Config, args []string, open busOpener, out io.Writer) (err error) {
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	bus, closer, err := open(cfg.Device)
	if err != nil {
		return fmt.Errorf("cannot open %s: %v", cfg.Device, err)
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close %s: %v", cfg.Device, cerr)
		}
	}()

	a, err := newApp(cfg, bus, out, logger)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"now"}
	}
	return a.run(args)
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// app holds what the commands operate on.
type app struct {
	cfg    Config
	out    io.Writer
	logger *slog.Logger
	clock  drivers.Clock
	// rtc is nil unless the chip is a DS1307.
	rtc *ds1307.Device
}

func newApp(cfg Config, bus drivers.I2C, out io.Writer, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		out:    out,
		logger: logger,
	}
	switch cfg.Chip {
	case "ds1307":
		d := ds1307.New(bus)
		d.Configure(ds1307.Config{
			Address: cfg.Address,
			Century: cfg.Century,
		})
		a.rtc, a.clock = d, d
	case "pcf8523":
		d := pcf8523.New(bus)
		if cfg.Address != 0 {
			d.Address = cfg.Address
		}
		a.clock = d
	default:
		return nil, fmt.Errorf("unknown chip %q", cfg.Chip)
	}
	logger.Debug("clock ready", slog.String("chip", cfg.Chip), slog.String("device", cfg.Device))
	return a, nil
}

func (a *app) run(args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
	if cmd.nargs >= 0 && len(args)-1 != cmd.nargs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(a, args[1:])
}

// needDS1307 returns the DS1307 driver, or an error naming cmd if the chip is something else.
func (a *app) needDS1307(cmd string) (*ds1307.Device, error) {
	if a.rtc == nil {
		return nil, fmt.Errorf("%s is not supported by the %s", cmd, a.cfg.Chip)
	}
	return a.rtc, nil
}
