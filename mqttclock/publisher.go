// Package mqttclock publishes the time kept by a real-time clock to an MQTT broker, and sets the clock from times
// published to a companion topic.
package mqttclock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ajanata/drivers"
)

// Client is the part of mqtt.Client used by a Publisher.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Config holds the Publisher settings.
type Config struct {
	// Topic receives the readings. Times published to Topic + "/set" are written to the clock by HandleSet.
	Topic string
	// Encoding defaults to JSON.
	Encoding Encoding
	// Timeout bounds the wait for the broker to acknowledge a reading. It defaults to 5s.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Publisher reads a clock and publishes what it reads.
type Publisher struct {
	client Client
	cfg    Config

	// mu serialises access to the clock, which HandleSet uses from the MQTT client's goroutine.
	mu    sync.Mutex
	clock drivers.Clock
}

var errTimeout = errors.New("mqttclock: timed out waiting for broker")

// New returns a Publisher for clock.
func New(clock drivers.Clock, client Client, cfg Config) (*Publisher, error) {
	if cfg.Topic == "" {
		return nil, errors.New("mqttclock: no topic")
	}
	if strings.ContainsAny(cfg.Topic, "+#") {
		return nil, fmt.Errorf("mqttclock: topic %q contains wildcards", cfg.Topic)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = JSON
	}
	if _, err := Encode(Reading{}, cfg.Encoding); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Publisher{
		client: client,
		cfg:    cfg,
		clock:  clock,
	}, nil
}

// SetTopic returns the topic HandleSet should be subscribed to.
func (p *Publisher) SetTopic() string {
	return p.cfg.Topic + "/set"
}

// PublishOnce reads the clock and publishes the reading, retained, at QoS 1.
func (p *Publisher) PublishOnce() error {
	p.mu.Lock()
	now, err := p.clock.Now()
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("mqttclock: cannot read clock: %w", err)
	}
	payload, err := Encode(NewReading(now), p.cfg.Encoding)
	if err != nil {
		return err
	}
	tok := p.client.Publish(p.cfg.Topic, 1, true, payload)
	if !tok.WaitTimeout(p.cfg.Timeout) {
		return errTimeout
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqttclock: cannot publish: %w", err)
	}
	p.cfg.Logger.Debug("published reading", slog.String("topic", p.cfg.Topic), slog.Time("time", now))
	return nil
}

// Run publishes a reading immediately and then every interval until ctx is done. Failed readings are logged and do
// not stop the loop. interval must be positive.
func (p *Publisher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("mqttclock: non-positive publish interval %v", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := p.PublishOnce(); err != nil {
			p.cfg.Logger.Warn("cannot publish reading", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// HandleSet is an mqtt.MessageHandler for SetTopic. The payload is an RFC 3339 time, which is written to the clock.
func (p *Publisher) HandleSet(_ mqtt.Client, msg mqtt.Message) {
	logger := p.cfg.Logger.With(slog.String("topic", msg.Topic()))
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(msg.Payload())))
	if err != nil {
		logger.Warn("ignoring set request", slog.Any("error", err))
		return
	}
	p.mu.Lock()
	err = p.clock.Set(t)
	p.mu.Unlock()
	if err != nil {
		logger.Error("cannot set clock", slog.Any("error", err))
		return
	}
	logger.Info("clock set", slog.Time("time", t))
}
