// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/gps_reader/internal/config"
	"github.com/relabs-tech/gps_reader/internal/gps"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

// NewWebMux serves the latest reading at /api/gps, pushes readings on
// /ws/gps and, when gatherer is non-nil, metrics on /metrics. state may be
// nil when no reader runs in this process.
func NewWebMux(latest *sink.Latest, hub *sink.Hub, gatherer prometheus.Gatherer, state func() gps.ConnState) *http.ServeMux {
	mux := http.NewServeMux()

	// JSON API endpoint: latest fix
	mux.HandleFunc("/api/gps", func(w http.ResponseWriter, r *http.Request) {
		reading := latest.Snapshot()
		if !reading.Available || reading.Fix == nil {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, reading)
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		status := struct {
			State     string    `json:"state,omitempty"`
			Available bool      `json:"available"`
			UpdatedAt time.Time `json:"updated_at"`
			Clients   int       `json:"ws_clients"`
		}{
			Available: latest.Snapshot().Available,
			UpdatedAt: latest.Snapshot().UpdatedAt,
			Clients:   hub.Clients(),
		}
		if state != nil {
			status.State = state().String()
		}
		writeJSON(w, status)
	})

	mux.Handle("/ws/gps", hub)

	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// RunWeb serves readings received over MQTT, for hosts that do not own the
// serial device.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	latest := sink.NewLatest()
	hub := sink.NewHub()

	client := connectMQTT(cfg, cfg.MQTTClientIDWeb, false)
	defer client.Disconnect(250)

	err := subscribeReadings(client, cfg.TopicGPS, "web", func(r sink.Reading) {
		latest.Set(r)
		hub.Broadcast(r)
	})
	if err != nil {
		return err
	}

	port := cfg.WebServerPort
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewWebMux(latest, hub, prometheus.DefaultGatherer, nil),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
