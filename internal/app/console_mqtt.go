// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/gps_reader/internal/config"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

// formatReading renders one reading as a console line.
func formatReading(r sink.Reading) string {
	if !r.Available || r.Fix == nil {
		return fmt.Sprintf("[GPS ]  unavailable since %s", r.UpdatedAt.Format(time.RFC3339))
	}
	f := r.Fix
	alt := "-"
	if f.HasAltitude() {
		alt = fmt.Sprintf("%.1fm", *f.Altitude)
	}
	return fmt.Sprintf(
		"[GPS ]  time=%s lat=%.6f lon=%.6f alt=%s sats=%d quality=%d",
		f.CapturedAt.Format(time.RFC3339), f.Latitude, f.Longitude, alt, f.Satellites, f.Quality,
	)
}

// RunConsoleMQTT prints every reading published on TOPIC_GPS until ctx is
// cancelled.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	client := connectMQTT(cfg, cfg.MQTTClientIDConsole, false)
	defer client.Disconnect(250)

	err := subscribeReadings(client, cfg.TopicGPS, "console", func(r sink.Reading) {
		fmt.Println(formatReading(r))
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}
