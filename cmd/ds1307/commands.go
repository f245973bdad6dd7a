package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ajanata/drivers/ds1307"
)

type command struct {
	usage string
	help  string
	// nargs is the exact number of arguments, or -1 to let run check them.
	nargs int
	run   func(a *app, args []string) error
}

var commands map[string]command

func init() {
	// Filled in here rather than in the declaration because help and shell refer to commands.
	commands = map[string]command{
		"help":    {"help", "show this list", 0, cmdHelp},
		"now":     {"now", "print the current time (RFC 3339, UTC)", 0, cmdNow},
		"show":    {"show", "print every date and time field in the clock's own format", 0, cmdShow},
		"set":     {"set <RFC3339|now>", "set the clock", 1, cmdSet},
		"get":     {"get <field>", "read one field: second minute hour weekday date month year format halted", 1, cmdGet},
		"put":     {"put <field> <value>", "write one field: second minute hour weekday date month year", 2, cmdPut},
		"format":  {"format 12|24", "switch the hour format, rewriting every field", 1, cmdFormat},
		"halt":    {"halt on|off", "stop or start the oscillator; resets the seconds to 0", 1, cmdHalt},
		"sqw":     {"sqw off|1hz|4096hz|8192hz|32768hz", "configure the square wave output", 1, cmdSquareWave},
		"ram":     {"ram read <offset> <n> | ram write <offset> <hex>", "access the battery-backed RAM", 3, cmdRAM},
		"hctosys": {"hctosys", "set the system time from the clock", 0, cmdHCToSys},
		"publish": {"publish", "publish the time to the MQTT broker until interrupted", 0, cmdPublish},
		"shell":   {"shell", "run commands interactively", 0, cmdShell},
	}
}

func cmdHelp(a *app, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(a.out, "  %-50s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func cmdNow(a *app, _ []string) error {
	t, err := a.clock.Now()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, t.Format(time.RFC3339))
	return nil
}

func cmdShow(a *app, _ []string) error {
	d, err := a.needDS1307("show")
	if err != nil {
		return err
	}
	dt, err := d.ReadAll()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, dt)
	return nil
}

func cmdSet(a *app, args []string) error {
	var t time.Time
	if args[0] == "now" {
		t = time.Now()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, args[0])
		if err != nil {
			return err
		}
	}
	if err := a.clock.Set(t); err != nil {
		return err
	}
	a.logger.Info("clock set", "time", t.UTC())
	return nil
}

func cmdGet(a *app, args []string) error {
	d, err := a.needDS1307("get")
	if err != nil {
		return err
	}
	var v interface{}
	switch args[0] {
	case "second":
		v, err = d.ReadSecond()
	case "minute":
		v, err = d.ReadMinute()
	case "hour":
		var h uint8
		h, err = d.ReadHour()
		v = strings.TrimSpace(fmt.Sprintf("%d %v", h, d.State().Period))
	case "weekday":
		v, err = d.ReadWeekday()
	case "date":
		v, err = d.ReadDate()
	case "month":
		v, err = d.ReadMonth()
	case "year":
		v, err = d.ReadYear()
	case "format":
		_, err = d.ReadHour()
		v = d.Format()
	case "halted":
		v, err = d.Halted()
	default:
		return fmt.Errorf("unknown field %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, v)
	return nil
}

func cmdPut(a *app, args []string) error {
	d, err := a.needDS1307("put")
	if err != nil {
		return err
	}
	field, value := args[0], args[1]
	switch field {
	case "weekday":
		w, err := parseWeekday(value)
		if err != nil {
			return err
		}
		return d.SetWeekday(w)
	case "month":
		m, err := parseMonth(value)
		if err != nil {
			return err
		}
		return d.SetMonth(m)
	case "year":
		y, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return err
		}
		return d.SetYear(uint16(y))
	}
	set := map[string]func(uint8) error{
		"second": d.SetSecond,
		"minute": d.SetMinute,
		"hour":   d.SetHour,
		"date":   d.SetDate,
	}[field]
	if set == nil {
		return fmt.Errorf("unknown field %q", field)
	}
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return err
	}
	if field == "hour" {
		// SetHour needs the current format.
		if _, err := d.ReadHour(); err != nil {
			return err
		}
	}
	return set(uint8(n))
}

func cmdFormat(a *app, args []string) error {
	d, err := a.needDS1307("format")
	if err != nil {
		return err
	}
	var f ds1307.HourFormat
	switch args[0] {
	case "12":
		f = ds1307.Format12H
	case "24":
		f = ds1307.Format24H
	default:
		return fmt.Errorf("hour format must be 12 or 24")
	}
	// The switch writes every field back from the cache.
	if _, err := d.ReadAll(); err != nil {
		return err
	}
	if err := d.SetTimeFormat(f); err != nil {
		return err
	}
	a.logger.Info("hour format set", "format", f)
	return nil
}

func cmdHalt(a *app, args []string) error {
	d, err := a.needDS1307("halt")
	if err != nil {
		return err
	}
	switch args[0] {
	case "on":
		return d.SetClockHalt(true)
	case "off":
		return d.SetClockHalt(false)
	}
	return fmt.Errorf("halt must be on or off")
}

var rates = map[string]ds1307.Rate{
	"1hz":     ds1307.Rate1Hz,
	"4096hz":  ds1307.Rate4096Hz,
	"8192hz":  ds1307.Rate8192Hz,
	"32768hz": ds1307.Rate32768Hz,
}

func cmdSquareWave(a *app, args []string) error {
	d, err := a.needDS1307("sqw")
	if err != nil {
		return err
	}
	arg := strings.ToLower(args[0])
	if arg == "off" {
		return d.SetSquareWave(ds1307.SquareWave{})
	}
	rate, ok := rates[arg]
	if !ok {
		return fmt.Errorf("unknown square wave rate %q", args[0])
	}
	return d.SetSquareWave(ds1307.SquareWave{Enabled: true, Rate: rate})
}

func cmdRAM(a *app, args []string) error {
	d, err := a.needDS1307("ram")
	if err != nil {
		return err
	}
	offset, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return err
	}
	switch args[0] {
	case "read":
		n, err := strconv.ParseUint(args[2], 0, 8)
		if err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := d.ReadRAM(uint8(offset), buf); err != nil {
			return err
		}
		fmt.Fprintln(a.out, hex.EncodeToString(buf))
		return nil
	case "write":
		buf, err := hex.DecodeString(args[2])
		if err != nil {
			return err
		}
		return d.WriteRAM(uint8(offset), buf)
	}
	return fmt.Errorf("usage: %s", commands["ram"].usage)
}

func cmdHCToSys(a *app, _ []string) error {
	t, err := a.clock.Now()
	if err != nil {
		return err
	}
	if err := setSysTime(t); err != nil {
		return fmt.Errorf("cannot set system time: %v", err)
	}
	a.logger.Info("system time set", "time", t)
	return nil
}

func parseWeekday(s string) (ds1307.Weekday, error) {
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return ds1307.Weekday(n), nil
	}
	for w := ds1307.Monday; w <= ds1307.Sunday; w++ {
		if strings.EqualFold(s, w.String()) || strings.EqualFold(s, w.String()[:3]) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func parseMonth(s string) (ds1307.Month, error) {
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		return ds1307.Month(n), nil
	}
	for m := ds1307.January; m <= ds1307.December; m++ {
		if strings.EqualFold(s, m.String()) || strings.EqualFold(s, m.String()[:3]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", s)
}
