// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "math"

// LowQualitySummaryEvery is how many low-quality rejections pass between
// two summary notices.
const LowQualitySummaryEvery = 120

// FilterState is owned by a single Filter. LastLatitude/LastLongitude start
// at 0/0, which means "no prior fix".
type FilterState struct {
	LastLatitude      float64
	LastLongitude     float64
	SkippedLowQuality int
}

// Verdict is the outcome of evaluating one candidate fix.
type Verdict int

const (
	Accept Verdict = iota
	RejectLowQuality
	RejectStationary
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RejectLowQuality:
		return "low quality"
	case RejectStationary:
		return "stationary"
	default:
		return "unknown"
	}
}

// Decision describes why a candidate was accepted or rejected.
// Summary is set on every LowQualitySummaryEvery-th low-quality rejection;
// Skipped then carries the running count.
type Decision struct {
	Verdict Verdict
	Skipped int
	Summary bool
}

// Accepted reports whether the candidate should be published.
func (d Decision) Accepted() bool { return d.Verdict == Accept }

// Filter bounds update volume to meaningful movement while dropping fixes
// below the configured quality. It is not safe for concurrent use; the
// Reader goroutine is its only user.
type Filter struct {
	MinQuality int
	Tolerance  float64

	state FilterState
}

func NewFilter(minQuality int, tolerance float64) *Filter {
	return &Filter{MinQuality: minQuality, Tolerance: tolerance}
}

// Evaluate decides whether candidate should be accepted. Low-quality
// rejections bump the skip counter; nothing else in the state changes.
func (f *Filter) Evaluate(candidate Fix) Decision {
	if candidate.Quality < f.MinQuality {
		f.state.SkippedLowQuality++
		return Decision{
			Verdict: RejectLowQuality,
			Skipped: f.state.SkippedLowQuality,
			Summary: f.state.SkippedLowQuality%LowQualitySummaryEvery == 0,
		}
	}

	// Strict less-than: a change equal to the tolerance counts as movement.
	if math.Abs(candidate.Latitude-f.state.LastLatitude) < f.Tolerance &&
		math.Abs(candidate.Longitude-f.state.LastLongitude) < f.Tolerance {
		return Decision{Verdict: RejectStationary, Skipped: f.state.SkippedLowQuality}
	}

	return Decision{Verdict: Accept, Skipped: f.state.SkippedLowQuality}
}

// ShouldAccept is Evaluate reduced to a yes/no answer.
func (f *Filter) ShouldAccept(candidate Fix) bool {
	return f.Evaluate(candidate).Accepted()
}

// RecordAcceptance stores candidate as the last accepted position.
func (f *Filter) RecordAcceptance(candidate Fix) {
	f.state.LastLatitude = candidate.Latitude
	f.state.LastLongitude = candidate.Longitude
}

// ResetSession clears the per-connection low-quality counter. The last
// accepted position survives reconnects.
func (f *Filter) ResetSession() {
	f.state.SkippedLowQuality = 0
}

// State returns a copy of the current filter state.
func (f *Filter) State() FilterState {
	return f.state
}
