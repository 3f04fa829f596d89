// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sink holds the places accepted GPS fixes are published to.
package sink

import (
	"time"

	"github.com/relabs-tech/gps_reader/internal/gps"
)

// Reading is the published state: either the latest fix or "unavailable".
// It is what goes over MQTT and the websocket.
type Reading struct {
	Available  bool           `json:"available"`
	Fix        *gps.Fix       `json:"fix,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func availableReading(fix gps.Fix) Reading {
	f := fix
	return Reading{
		Available:  true,
		Fix:        &f,
		Attributes: fix.Attributes(),
		UpdatedAt:  fix.CapturedAt,
	}
}

func unavailableReading(now time.Time) Reading {
	return Reading{Available: false, UpdatedAt: now}
}

// Fanout forwards every call to each sink in order.
type Fanout []gps.Sink

func (f Fanout) Publish(fix gps.Fix) {
	for _, s := range f {
		s.Publish(fix)
	}
}

func (f Fanout) PublishUnavailable() {
	for _, s := range f {
		s.PublishUnavailable()
	}
}
