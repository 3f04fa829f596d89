// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/gps_reader/internal/config"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

// RunDisplay shows the latest reading from MQTT on an SSD1306 OLED.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	latest := sink.NewLatest()
	client := connectMQTT(cfg, cfg.MQTTClientIDDisplay, false)
	defer client.Disconnect(250)

	if err := subscribeReadings(client, cfg.TopicGPS, "display", latest.Set); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := dev.Draw(dev.Bounds(), renderReading(latest.Snapshot()), image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}

func newCanvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, y int, text string) {
	d.Dot = fixed.P(0, y)
	d.DrawString(text)
}

func renderReading(r sink.Reading) *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	if !r.Available || r.Fix == nil {
		drawLine(drawer, 26, "GPS Position")
		if r.UpdatedAt.IsZero() {
			drawLine(drawer, 39, "Waiting...")
		} else {
			drawLine(drawer, 39, "Unavailable")
		}
		return img
	}

	f := r.Fix
	latDir, lat := "N", f.Latitude
	if lat < 0 {
		latDir, lat = "S", -lat
	}
	lonDir, lon := "E", f.Longitude
	if lon < 0 {
		lonDir, lon = "W", -lon
	}

	drawLine(drawer, 13, fmt.Sprintf("%.4f%s", lat, latDir))
	drawLine(drawer, 26, fmt.Sprintf("%.4f%s", lon, lonDir))
	if f.HasAltitude() {
		drawLine(drawer, 39, fmt.Sprintf("Alt: %.0fm", *f.Altitude))
	} else {
		drawLine(drawer, 39, "Alt: -")
	}
	drawLine(drawer, 52, fmt.Sprintf("Sats:%d Q:%d", f.Satellites, f.Quality))
	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("GPS Reader")

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawString("Looking for")

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawString("sats")
	return img
}
