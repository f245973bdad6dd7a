package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ajanata/drivers/mqttclock"
)

func cmdPublish(a *app, _ []string) error {
	mc := a.cfg.MQTT
	if mc.Broker == "" {
		return errors.New("no MQTT broker configured")
	}
	if mc.ClientID == "" {
		mc.ClientID = "ds1307-" + uuid.NewString()
	}

	var pub *mqttclock.Publisher
	opts := mqtt.NewClientOptions().
		AddBroker(mc.Broker).
		SetClientID(mc.ClientID).
		SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// Subscriptions do not survive a reconnect.
		if tok := c.Subscribe(pub.SetTopic(), 1, pub.HandleSet); tok.Wait() && tok.Error() != nil {
			a.logger.Error("cannot subscribe", slog.String("topic", pub.SetTopic()), slog.Any("error", tok.Error()))
		}
	})
	client := mqtt.NewClient(opts)

	pub, err := mqttclock.New(a.clock, client, mqttclock.Config{
		Topic:    mc.Topic,
		Encoding: mqttclock.Encoding(mc.Encoding),
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return fmt.Errorf("cannot connect to %s: %v", mc.Broker, tok.Error())
	}
	defer client.Disconnect(250)
	a.logger.Info("publishing",
		slog.String("broker", mc.Broker),
		slog.String("client_id", mc.ClientID),
		slog.String("topic", mc.Topic),
		slog.Duration("interval", mc.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := pub.Run(ctx, mc.Interval); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
