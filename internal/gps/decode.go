// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	nmea "github.com/adrianmo/go-nmea"
)

// GGA field positions after the sentence type.
const (
	ggaLatitude   = 1
	ggaLongitude  = 3
	ggaQuality    = 5
	ggaAltitude   = 8
	ggaFieldCount = 9
)

// Decode turns one line from the receiver into a Fix.
//
// Only GGA sentences produce a Fix: they are the positional sentences that
// also carry the receiver's fix quality. Every other outcome is a
// *DecodeError. Decode has no hidden state; at is recorded as CapturedAt.
func Decode(line []byte, at time.Time) (Fix, error) {
	if !utf8.Valid(line) {
		return Fix{}, &DecodeError{Kind: KindEncoding, Line: strconv.QuoteToASCII(string(line))}
	}

	raw := strings.TrimSpace(string(line))
	if raw == "" {
		return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: errors.New("empty line")}
	}

	sentence, err := nmea.Parse(raw)
	if err != nil {
		var unsupported *nmea.NotSupportedError
		if errors.As(err, &unsupported) {
			return Fix{}, &DecodeError{Kind: KindNotApplicable, Line: raw, Err: err}
		}
		return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: err}
	}

	if sentence.DataType() != nmea.TypeGGA {
		return Fix{}, &DecodeError{Kind: KindNotApplicable, Line: raw}
	}
	gga, ok := sentence.(nmea.GGA)
	if !ok {
		return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: fmt.Errorf("unexpected sentence value %T", sentence)}
	}

	return fixFromGGA(gga, raw, at)
}

func fixFromGGA(m nmea.GGA, raw string, at time.Time) (Fix, error) {
	if len(m.Fields) < ggaFieldCount {
		return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: fmt.Errorf("GGA has %d fields", len(m.Fields))}
	}
	for _, idx := range []int{ggaLatitude, ggaLongitude, ggaQuality} {
		if strings.TrimSpace(m.Fields[idx]) == "" {
			return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: fmt.Errorf("GGA field %d is empty", idx)}
		}
	}

	quality, err := strconv.Atoi(m.FixQuality)
	if err != nil || quality < 0 {
		return Fix{}, &DecodeError{Kind: KindMalformed, Line: raw, Err: fmt.Errorf("invalid fix quality %q", m.FixQuality)}
	}

	fix := Fix{
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		Satellites: int(m.NumSatellites),
		Quality:    quality,
		HDOP:       m.HDOP,
		Talker:     m.Talker,
		CapturedAt: at,
	}
	if strings.TrimSpace(m.Fields[ggaAltitude]) != "" {
		alt := m.Altitude
		fix.Altitude = &alt
	}
	if fix.Satellites < 0 {
		fix.Satellites = 0
	}
	return fix, nil
}
