// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"sync/atomic"
	"time"

	"github.com/relabs-tech/gps_reader/internal/gps"
)

// Latest keeps the most recent Reading. A whole fix is swapped in at once,
// so readers never see a half-updated position.
type Latest struct {
	last atomic.Value // Reading
	now  func() time.Time
}

func NewLatest() *Latest {
	l := &Latest{now: time.Now}
	l.last.Store(Reading{})
	return l
}

func (l *Latest) Publish(fix gps.Fix) {
	l.last.Store(availableReading(fix))
}

func (l *Latest) PublishUnavailable() {
	l.last.Store(unavailableReading(l.now()))
}

// Set stores a Reading received from elsewhere, e.g. over MQTT.
func (l *Latest) Set(r Reading) {
	l.last.Store(r)
}

// Snapshot returns the current Reading. Before the first publish it is the
// zero Reading (not available, no fix).
func (l *Latest) Snapshot() Reading {
	v := l.last.Load()
	if v == nil {
		return Reading{}
	}
	return v.(Reading)
}
