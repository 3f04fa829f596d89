// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
)

// DecodeKind classifies why a line did not produce a Fix.
type DecodeKind int

const (
	// KindMalformed: not a recognizable sentence, bad or missing checksum,
	// or required positional fields are absent.
	KindMalformed DecodeKind = iota + 1
	// KindNotApplicable: a valid sentence that carries no position fix.
	// This is routine traffic.
	KindNotApplicable
	// KindEncoding: the raw bytes are not valid UTF-8 text.
	KindEncoding
)

func (k DecodeKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindNotApplicable:
		return "not applicable"
	case KindEncoding:
		return "encoding"
	default:
		return fmt.Sprintf("DecodeKind(%d)", int(k))
	}
}

// Sentinel errors for errors.Is checks against a *DecodeError.
var (
	ErrMalformed     = errors.New("gps: malformed sentence")
	ErrNotApplicable = errors.New("gps: sentence carries no position")
	ErrEncoding      = errors.New("gps: line is not valid text")
)

// DecodeError is returned by Decode for every line that does not yield a Fix.
type DecodeError struct {
	Kind DecodeKind
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gps: %s sentence %q: %v", e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("gps: %s sentence %q", e.Kind, e.Line)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == KindMalformed
	case ErrNotApplicable:
		return e.Kind == KindNotApplicable
	case ErrEncoding:
		return e.Kind == KindEncoding
	}
	return false
}

// IsRoutine reports whether err is one of the expected per-line decode
// outcomes that should never be surfaced as an error.
func IsRoutine(err error) bool {
	var de *DecodeError
	if !errors.As(err, &de) {
		return false
	}
	switch de.Kind {
	case KindMalformed, KindNotApplicable, KindEncoding:
		return true
	}
	return false
}
