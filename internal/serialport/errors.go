// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"errors"
	"fmt"
)

// ConnKind classifies connection failures.
type ConnKind int

const (
	// KindUnreachable: the device could not be opened (unplugged, wrong
	// path, permission denied).
	KindUnreachable ConnKind = iota + 1
	// KindIOFailure: the transport failed while the stream was open.
	KindIOFailure
)

func (k ConnKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindIOFailure:
		return "i/o failure"
	default:
		return fmt.Sprintf("ConnKind(%d)", int(k))
	}
}

var (
	ErrUnreachable = errors.New("serialport: device unreachable")
	ErrIOFailure   = errors.New("serialport: i/o failure")
	ErrLineTooLong = errors.New("serialport: line exceeds buffer")
)

// ConnError is returned by Opener.Open and LineStream.ReadLine.
type ConnError struct {
	Kind   ConnKind
	Device string
	Err    error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("serialport: %s %s: %v", e.Device, e.Kind, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

func (e *ConnError) Is(target error) bool {
	switch target {
	case ErrUnreachable:
		return e.Kind == KindUnreachable
	case ErrIOFailure:
		return e.Kind == KindIOFailure
	}
	return false
}

func unreachable(device string, err error) error {
	return &ConnError{Kind: KindUnreachable, Device: device, Err: err}
}

func ioFailure(device string, err error) error {
	return &ConnError{Kind: KindIOFailure, Device: device, Err: err}
}
