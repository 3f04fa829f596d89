// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/relabs-tech/gps_reader/internal/config"
	"github.com/relabs-tech/gps_reader/internal/gps"
	"github.com/relabs-tech/gps_reader/internal/metrics"
	"github.com/relabs-tech/gps_reader/internal/serialport"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

// chooseOpener maps the configured port onto an Opener and the device name
// the reader reports.
func chooseOpener(cfg *config.Config) (serialport.Opener, string) {
	port := strings.TrimSpace(cfg.GPSSerialPort)
	switch {
	case strings.EqualFold(port, serialport.SimulatorDevice):
		return serialport.NewSimulator(), serialport.SimulatorDevice
	case cfg.AutoDetect():
		return &serialport.Discovering{
			VID:    cfg.GPSDiscoverVID,
			PID:    cfg.GPSDiscoverPID,
			Opener: serialport.Serial{},
		}, fmt.Sprintf("auto(%s:%s)", cfg.GPSDiscoverVID, cfg.GPSDiscoverPID)
	default:
		return serialport.Serial{}, port
	}
}

// RunGPSProducer reads the GPS receiver until ctx is cancelled and
// publishes filtered fixes to MQTT topic TOPIC_GPS, the embedded web server
// and its websocket clients.
func RunGPSProducer(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	opener, device := chooseOpener(cfg)

	client := connectMQTT(cfg, cfg.MQTTClientIDGPS, true)
	defer client.Disconnect(250)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	latest := sink.NewLatest()
	hub := sink.NewHub()
	mq := sink.NewMQTT(client, cfg.TopicGPS, cfg.TopicGPSAvailability)
	go mq.Run(ctx)
	out := sink.Fanout{
		mq,
		latest,
		hub,
	}

	reader := gps.NewReader(gps.Config{
		Device:         device,
		Baud:           cfg.GPSBaudRate,
		MinQuality:     cfg.GPSMinQuality,
		Tolerance:      cfg.GPSPositionTolerance,
		ReconnectDelay: cfg.ReconnectDelay(),
		ReadTimeout:    cfg.ReadTimeout(),
		Debug:          cfg.GPSDebug,
	}, opener, out)
	reader.Metrics = m

	if cfg.WebServerPort > 0 {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
			Handler:           NewWebMux(latest, hub, reg, reader.State),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Printf("web: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("web: server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Printf("gps: reading %s at %d baud (min quality %d, tolerance %g)",
		device, cfg.GPSBaudRate, cfg.GPSMinQuality, cfg.GPSPositionTolerance)

	err := reader.Run(ctx)
	log.Println("gps: reader stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
