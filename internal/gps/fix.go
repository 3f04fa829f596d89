// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "time"

// Fix represents a single decoded position suitable for JSON and MQTT.
// A Fix only exists for sentences that carried latitude, longitude and a
// quality indicator.
type Fix struct {
	Latitude   float64   `json:"lat"`              // decimal degrees
	Longitude  float64   `json:"lon"`              // decimal degrees
	Altitude   *float64  `json:"alt_m,omitempty"`  // meters above mean sea level, nil when not reported
	Satellites int       `json:"satellites"`       // satellites in use
	Quality    int       `json:"quality"`          // 0 = no fix, device-defined scale above
	HDOP       float64   `json:"hdop,omitempty"`   // horizontal dilution of precision
	Talker     string    `json:"talker,omitempty"` // e.g. "GP", "GN"
	CapturedAt time.Time `json:"captured_at"`      // when the line was decoded
}

// HasAltitude reports whether the receiver supplied an altitude.
func (f Fix) HasAltitude() bool {
	return f.Altitude != nil
}

// AltitudeOr returns the altitude or def when none was reported.
func (f Fix) AltitudeOr(def float64) float64 {
	if f.Altitude == nil {
		return def
	}
	return *f.Altitude
}

// Attributes returns the auxiliary values that accompany a published fix.
func (f Fix) Attributes() map[string]any {
	return map[string]any{
		"num_satelites":  f.Satellites,
		"signal_quality": f.Quality,
		"timestamp":      f.CapturedAt.Format(time.ANSIC),
	}
}
