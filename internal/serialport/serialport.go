// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package serialport opens GPS receivers and exposes them as streams of
// text lines. It does not retry; reconnect policy belongs to the caller.
package serialport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	serial "github.com/jacobsa/go-serial/serial"
)

// MaxLineLength bounds a single sentence. NMEA sentences are at most 82
// characters, so anything longer means the stream lost sync.
const MaxLineLength = 4096

// LineStream yields newline-delimited lines with terminators and
// surrounding whitespace stripped. Close may be called concurrently with a
// blocked ReadLine to interrupt it, and more than once.
type LineStream interface {
	ReadLine() ([]byte, error)
	Close() error
}

// Opener opens a LineStream for a device path at a given baud rate.
type Opener interface {
	Open(ctx context.Context, device string, baud int) (LineStream, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, device string, baud int) (LineStream, error)

func (f OpenerFunc) Open(ctx context.Context, device string, baud int) (LineStream, error) {
	return f(ctx, device, baud)
}

// Serial opens real serial devices (8N1). Reads go through the runtime
// poller, so Close interrupts a blocked ReadLine.
type Serial struct{}

func (Serial) Open(ctx context.Context, device string, baud int) (LineStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, unreachable(device, err)
	}

	opts := serial.OpenOptions{
		PortName:              device,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, unreachable(device, err)
	}
	rc, err := pollable(device, port)
	if err != nil {
		return nil, unreachable(device, err)
	}
	return NewLineStream(device, rc), nil
}

// NewLineStream wraps an already open transport.
func NewLineStream(device string, rc io.ReadCloser) LineStream {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 256), MaxLineLength)
	return &lineStream{device: device, rc: rc, scanner: scanner}
}

type lineStream struct {
	device  string
	rc      io.ReadCloser
	scanner *bufio.Scanner

	closeOnce sync.Once
	closeErr  error
}

func (s *lineStream) ReadLine() ([]byte, error) {
	if !s.scanner.Scan() {
		err := s.scanner.Err()
		switch {
		case err == nil:
			err = io.EOF
		case err == bufio.ErrTooLong:
			err = ErrLineTooLong
		}
		return nil, ioFailure(s.device, err)
	}
	// The scanner reuses its buffer; hand out a copy.
	return bytes.Clone(bytes.TrimSpace(s.scanner.Bytes())), nil
}

func (s *lineStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rc.Close()
	})
	return s.closeErr
}
