// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/gps_reader/internal/gps"
)

const (
	AvailabilityOnline  = "online"
	AvailabilityOffline = "offline"

	publishTimeout = 2 * time.Second
	queueSize      = 32
)

// Publisher is the part of mqtt.Client the MQTT sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes retained Readings as JSON to FixTopic and "online" /
// "offline" to AvailabilityTopic when it changes. Publish and
// PublishUnavailable only queue the reading; Run talks to the broker, so a
// slow or absent broker never stalls the caller. When the queue is full the
// oldest reading is dropped.
type MQTT struct {
	client            Publisher
	fixTopic          string
	availabilityTopic string
	now               func() time.Time
	timeout           time.Duration

	queue   chan Reading
	lagging atomic.Bool

	// Only touched from Run.
	lastAvailability string
}

func NewMQTT(client Publisher, fixTopic, availabilityTopic string) *MQTT {
	return &MQTT{
		client:            client,
		fixTopic:          fixTopic,
		availabilityTopic: availabilityTopic,
		now:               time.Now,
		timeout:           publishTimeout,
		queue:             make(chan Reading, queueSize),
	}
}

func (m *MQTT) Publish(fix gps.Fix) {
	m.enqueue(availableReading(fix))
}

func (m *MQTT) PublishUnavailable() {
	m.enqueue(unavailableReading(m.now()))
}

func (m *MQTT) enqueue(r Reading) {
	for {
		select {
		case m.queue <- r:
			return
		default:
		}
		select {
		case <-m.queue:
			if !m.lagging.Swap(true) {
				log.Printf("mqtt: broker not keeping up, dropping old GPS readings")
			}
		default:
		}
	}
}

// Run sends queued readings until ctx is cancelled.
func (m *MQTT) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-m.queue:
			m.send(r)
		}
	}
}

func (m *MQTT) send(r Reading) {
	state := AvailabilityOffline
	if r.Available {
		state = AvailabilityOnline
	}
	m.setAvailability(state)

	payload, err := json.Marshal(r)
	if err != nil {
		log.Printf("mqtt: GPS publish error: marshal reading: %v", err)
		return
	}
	if err := m.publish(m.fixTopic, payload); err != nil {
		log.Printf("mqtt: GPS publish error: %v", err)
		return
	}
	m.lagging.Store(false)
}

func (m *MQTT) setAvailability(state string) {
	if m.availabilityTopic == "" || m.lastAvailability == state {
		return
	}
	if err := m.publish(m.availabilityTopic, []byte(state)); err != nil {
		log.Printf("mqtt: availability publish error: %v", err)
		return
	}
	m.lastAvailability = state
}

func (m *MQTT) publish(topic string, payload []byte) error {
	token := m.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// DecodeReading parses a payload published by MQTT.
func DecodeReading(payload []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		return Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	return r, nil
}
