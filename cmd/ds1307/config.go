package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the command configuration. Values come from the defaults, then the configuration file, then the
// flags given explicitly on the command line.
type Config struct {
	Device   string     `yaml:"device"`
	Chip     string     `yaml:"chip"`
	Address  uint8      `yaml:"address"`
	Century  uint16     `yaml:"century"`
	LogLevel string     `yaml:"log_level"`
	MQTT     MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the publish command.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
	// ClientID defaults to "ds1307-" followed by a random UUID.
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	Encoding string        `yaml:"encoding"`
	Interval time.Duration `yaml:"interval"`
}

func defaultConfig() Config {
	return Config{
		Device:   "/dev/i2c-1",
		Chip:     "ds1307",
		Century:  2000,
		LogLevel: "info",
		MQTT: MQTTConfig{
			Topic:    "ds1307/time",
			Encoding: "json",
			Interval: 10 * time.Second,
		},
	}
}

// parseFlags parses the command line and returns the configuration and the remaining arguments.
func parseFlags(args []string) (Config, []string, error) {
	var (
		flagCfg    = defaultConfig()
		configFile string
		address    uint
		century    uint
	)
	fs := flag.NewFlagSet("ds1307", flag.ContinueOnError)
	fs.StringVar(&configFile, "config", "", "YAML configuration file")
	fs.StringVar(&flagCfg.Device, "device", flagCfg.Device, "I2C character device")
	fs.StringVar(&flagCfg.Chip, "chip", flagCfg.Chip, "clock chip: ds1307 or pcf8523")
	fs.UintVar(&address, "address", 0, "I2C address; 0 means the chip's default")
	fs.UintVar(&century, "century", uint(flagCfg.Century), "century added to the two-digit year")
	fs.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&flagCfg.MQTT.Broker, "broker", "", "MQTT broker URL for the publish command")
	fs.StringVar(&flagCfg.MQTT.Topic, "topic", flagCfg.MQTT.Topic, "MQTT topic for the publish command")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: ds1307 [flags] [command [args...]]\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "Run \"ds1307 help\" for the list of commands.\n")
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	if address > 0x7F {
		return Config{}, nil, fmt.Errorf("address %#x is not a 7-bit I2C address", address)
	}
	if century > 0xFFFF {
		return Config{}, nil, fmt.Errorf("century %d out of range", century)
	}
	if century%100 != 0 {
		return Config{}, nil, fmt.Errorf("century %d is not a multiple of 100", century)
	}
	flagCfg.Address = uint8(address)
	flagCfg.Century = uint16(century)

	cfg := defaultConfig()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, nil, fmt.Errorf("cannot parse %s: %v", configFile, err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = flagCfg.Device
		case "chip":
			cfg.Chip = flagCfg.Chip
		case "address":
			cfg.Address = flagCfg.Address
		case "century":
			cfg.Century = flagCfg.Century
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "broker":
			cfg.MQTT.Broker = flagCfg.MQTT.Broker
		case "topic":
			cfg.MQTT.Topic = flagCfg.MQTT.Topic
		}
	})
	if cfg.Century%100 != 0 {
		return Config{}, nil, fmt.Errorf("century %d is not a multiple of 100", cfg.Century)
	}
	if cfg.MQTT.Interval <= 0 {
		return Config{}, nil, fmt.Errorf("mqtt interval %v is not positive", cfg.MQTT.Interval)
	}
	return cfg, fs.Args(), nil
}
