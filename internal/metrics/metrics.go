// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes reader counters for Prometheus. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gps_reader"

type Metrics struct {
	LinesRead       prometheus.Counter
	DecodeFailures  *prometheus.CounterVec
	Fixes           *prometheus.CounterVec
	ConnectAttempts *prometheus.CounterVec
	Connected       prometheus.Gauge
	LastFixUnix     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Lines read from the GPS receiver.",
		}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Lines that did not decode to a fix, by reason.",
		}, []string{"reason"}),
		Fixes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixes_total",
			Help:      "Decoded fixes by filter verdict.",
		}, []string{"verdict"}),
		ConnectAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Serial open attempts by result.",
		}, []string{"result"}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the serial stream is open.",
		}),
		LastFixUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_fix_timestamp_seconds",
			Help:      "Unix time of the last published fix.",
		}),
	}
	reg.MustRegister(m.LinesRead, m.DecodeFailures, m.Fixes, m.ConnectAttempts, m.Connected, m.LastFixUnix)
	return m
}

func (m *Metrics) LineRead() {
	if m == nil {
		return
	}
	m.LinesRead.Inc()
}

func (m *Metrics) DecodeFailed(reason string) {
	if m == nil {
		return
	}
	m.DecodeFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) FixEvaluated(verdict string) {
	if m == nil {
		return
	}
	m.Fixes.WithLabelValues(verdict).Inc()
}

func (m *Metrics) FixPublished(at time.Time) {
	if m == nil {
		return
	}
	m.LastFixUnix.Set(float64(at.Unix()))
}

func (m *Metrics) ConnectResult(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.ConnectAttempts.WithLabelValues("ok").Inc()
		m.Connected.Set(1)
		return
	}
	m.ConnectAttempts.WithLabelValues("failed").Inc()
	m.Connected.Set(0)
}

func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.Connected.Set(0)
}
