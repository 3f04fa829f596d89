// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/gps_reader/internal/metrics"
	"github.com/relabs-tech/gps_reader/internal/serialport"
)

// DefaultReconnectDelay is the wait between a failure and the next open.
const DefaultReconnectDelay = 5 * time.Second

// Config controls one Reader.
type Config struct {
	Device     string
	Baud       int
	MinQuality int
	Tolerance  float64

	// ReconnectDelay defaults to DefaultReconnectDelay.
	ReconnectDelay time.Duration
	// ReadTimeout, when positive, treats a device that stays open but
	// silent for this long as failed. Zero waits forever.
	ReadTimeout time.Duration

	Debug bool
}

// Reader keeps one serial device open, decodes its sentences and pushes
// filtered fixes to a Sink. Run must not be called concurrently.
type Reader struct {
	cfg    Config
	opener serialport.Opener
	sink   Sink
	filter *Filter

	Logger  *log.Logger
	Metrics *metrics.Metrics

	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	decode func([]byte, time.Time) (Fix, error)

	state atomic.Int32

	// Only touched from Run.
	unavailable bool
	loggedOpen  bool
}

func NewReader(cfg Config, opener serialport.Opener, sink Sink) *Reader {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Reader{
		cfg:    cfg,
		opener: opener,
		sink:   sink,
		filter: NewFilter(cfg.MinQuality, cfg.Tolerance),
		now:    time.Now,
		after:  time.After,
		decode: Decode,
	}
}

// State returns the current connection state. Safe from any goroutine.
func (r *Reader) State() ConnState {
	return ConnState(r.state.Load())
}

// FilterState returns the filter state. Only meaningful once Run returned.
func (r *Reader) FilterState() FilterState {
	return r.filter.State()
}

// Run reads until ctx is cancelled and then returns ctx.Err(). Connection
// and decode failures never end the loop.
func (r *Reader) Run(ctx context.Context) error {
	defer r.setState(StateStopped)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.setState(StateConnecting)
		stream, err := r.opener.Open(ctx, r.cfg.Device, r.cfg.Baud)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Metrics.ConnectResult(false)
			r.setState(StateDisconnected)
			r.markUnavailable()
			if !r.loggedOpen {
				r.logf("gps: unable to connect to the GPS %s: %v. Keep trying ...", r.cfg.Device, err)
				r.loggedOpen = true
			}
			if err := r.wait(ctx); err != nil {
				return err
			}
			continue
		}

		r.Metrics.ConnectResult(true)
		r.loggedOpen = false
		r.unavailable = false
		r.filter.ResetSession()
		r.setState(StateConnected)
		r.logf("gps: connected to GPS at %s (%d baud)", r.cfg.Device, r.cfg.Baud)

		err = r.stream(ctx, stream)
		r.Metrics.Disconnected()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.setState(StateDisconnected)
		r.logf("gps: error while reading GPS %s: %v", r.cfg.Device, err)
		if err := r.wait(ctx); err != nil {
			return err
		}
	}
}

// stream reads lines until the stream fails or ctx is cancelled. The
// stream is closed on every return path.
func (r *Reader) stream(ctx context.Context, s serialport.LineStream) error {
	defer func() {
		r.setState(StateClosing)
		_ = s.Close()
	}()
	// Unblocks ReadLine on cancellation.
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	var stalled atomic.Bool
	var watchdog *time.Timer
	if r.cfg.ReadTimeout > 0 {
		watchdog = time.AfterFunc(r.cfg.ReadTimeout, func() {
			stalled.Store(true)
			_ = s.Close()
		})
		defer watchdog.Stop()
	}

	for {
		line, err := s.ReadLine()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if stalled.Load() {
				err = fmt.Errorf("no data for %s: %w", r.cfg.ReadTimeout, err)
			}
			r.markUnavailable()
			return err
		}
		if watchdog != nil {
			watchdog.Reset(r.cfg.ReadTimeout)
		}

		r.Metrics.LineRead()
		if len(line) == 0 {
			continue
		}
		r.handleLine(line)
	}
}

func (r *Reader) handleLine(line []byte) {
	fix, err := r.safeDecode(line)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) && IsRoutine(err) {
			r.Metrics.DecodeFailed(de.Kind.String())
			r.debugf("gps: skip line: %v", err)
			return
		}
		r.Metrics.DecodeFailed("unexpected")
		r.logf("gps: unexpected error decoding %q: %v", line, err)
		return
	}

	d := r.filter.Evaluate(fix)
	r.Metrics.FixEvaluated(d.Verdict.String())
	switch d.Verdict {
	case RejectLowQuality:
		r.debugf("gps: skip low quality (%d) GPS reading", fix.Quality)
		if d.Summary {
			r.logf("gps: %d low quality GPS readings ignored", d.Skipped)
		}
		return
	case RejectStationary:
		r.debugf("gps: ignore small position change")
		return
	}

	r.filter.RecordAcceptance(fix)
	r.debugf("gps: publish lat=%.6f lon=%.6f alt=%.1f sats=%d quality=%d",
		fix.Latitude, fix.Longitude, fix.AltitudeOr(0), fix.Satellites, fix.Quality)
	r.sink.Publish(fix)
	r.Metrics.FixPublished(fix.CapturedAt)
	r.unavailable = false
}

// safeDecode turns a decoder panic into an error so one bad line cannot end
// the session.
func (r *Reader) safeDecode(line []byte) (fix Fix, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("decoder panic: %v", p)
		}
	}()
	return r.decode(line, r.now())
}

// markUnavailable notifies the sink once per failure transition.
func (r *Reader) markUnavailable() {
	if r.unavailable {
		return
	}
	r.unavailable = true
	r.sink.PublishUnavailable()
}

func (r *Reader) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.after(r.cfg.ReconnectDelay):
		return nil
	}
}

func (r *Reader) setState(s ConnState) {
	r.state.Store(int32(s))
}

func (r *Reader) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (r *Reader) debugf(format string, args ...any) {
	if !r.cfg.Debug {
		return
	}
	r.logf(format, args...)
}
