// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_reader/internal/config"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

const connectWait = 5 * time.Second

// connectMQTT connects to the configured broker. The client keeps retrying
// in the background, so a broker that is down at startup is not fatal.
func connectMQTT(cfg *config.Config, clientID string, will bool) mqtt.Client {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if will && cfg.TopicGPSAvailability != "" {
		opts.SetWill(cfg.TopicGPSAvailability, sink.AvailabilityOffline, 0, true)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectWait) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", cfg.MQTTBroker)
		return client
	}
	if err := token.Error(); err != nil {
		log.Printf("mqtt: connect error: %v", err)
		return client
	}
	log.Printf("mqtt: connected to broker at %s", cfg.MQTTBroker)
	return client
}

// subscribeReadings calls fn for every Reading published on the GPS topic.
func subscribeReadings(client mqtt.Client, topic, who string, fn func(sink.Reading)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		r, err := sink.DecodeReading(msg.Payload())
		if err != nil {
			log.Printf("%s: gps unmarshal error: %v", who, err)
			return
		}
		fn(r)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("%s: subscribed to %s", who, topic)
	return nil
}
