// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// SimulatorDevice is the device name that selects the Simulator.
const SimulatorDevice = "sim"

var errSimulatorClosed = errors.New("simulator closed")

// Simulator fakes a receiver that walks a circle around a center point.
// Each tick emits one GGA and one RMC sentence. The first AcquireTicks
// ticks report fix quality 0, like a receiver still looking for sats.
type Simulator struct {
	Interval     time.Duration
	CenterLat    float64
	CenterLon    float64
	RadiusDeg    float64
	Altitude     float64
	AcquireTicks int
}

// NewSimulator returns a 1 Hz simulator around Munich.
func NewSimulator() *Simulator {
	return &Simulator{
		Interval:     time.Second,
		CenterLat:    48.1173,
		CenterLon:    11.5167,
		RadiusDeg:    0.01,
		Altitude:     545.4,
		AcquireTicks: 3,
	}
}

func (s *Simulator) Open(ctx context.Context, device string, baud int) (LineStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, unreachable(device, err)
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	return &simStream{
		sim:    s,
		device: device,
		start:  time.Now(),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}, nil
}

type simStream struct {
	sim    *Simulator
	device string
	start  time.Time
	ticker *time.Ticker
	done   chan struct{}

	ticks   int
	pending []string

	closeOnce sync.Once
}

func (s *simStream) ReadLine() ([]byte, error) {
	for len(s.pending) == 0 {
		select {
		case <-s.done:
			return nil, ioFailure(s.device, errSimulatorClosed)
		case t := <-s.ticker.C:
			s.pending = s.sim.sentences(s.ticks, t.Sub(s.start).Seconds(), t.UTC())
			s.ticks++
		}
	}
	line := s.pending[0]
	s.pending = s.pending[1:]
	return []byte(line), nil
}

func (s *simStream) Close() error {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
	return nil
}

func (s *Simulator) sentences(tick int, elapsed float64, now time.Time) []string {
	lat := s.CenterLat + s.RadiusDeg*math.Sin(elapsed*0.1)
	lon := s.CenterLon + s.RadiusDeg*math.Cos(elapsed*0.1)

	quality, sats := "1", "08"
	if tick < s.AcquireTicks {
		quality, sats = "0", "00"
	}

	latStr, ns := formatCoord(lat, 2, "N", "S")
	lonStr, ew := formatCoord(lon, 3, "E", "W")
	hhmmss := now.Format("150405.00")

	gga := sentence("GPGGA", hhmmss, latStr, ns, lonStr, ew, quality, sats, "0.9",
		fmt.Sprintf("%.1f", s.Altitude), "M", "46.9", "M", "", "")
	rmc := sentence("GPRMC", hhmmss, "A", latStr, ns, lonStr, ew, "0.5", "54.7",
		now.Format("020106"), "", "")
	return []string{gga, rmc}
}

// formatCoord renders decimal degrees as NMEA ddmm.mmmm (or dddmm.mmmm).
func formatCoord(v float64, degDigits int, pos, neg string) (string, string) {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	deg := math.Floor(v)
	minutes := math.Round((v-deg)*60*1e4) / 1e4
	if minutes >= 60 {
		deg++
		minutes -= 60
	}
	return fmt.Sprintf("%0*d%07.4f", degDigits, int(deg), minutes), hemi
}

// sentence builds "$TYPE,f1,f2,...*CS".
func sentence(typ string, fields ...string) string {
	body := typ + "," + strings.Join(fields, ",")
	return fmt.Sprintf("$%s*%s", body, checksum(body))
}

func checksum(s string) string {
	var sum uint8
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}
	return fmt.Sprintf("%02X", sum)
}
