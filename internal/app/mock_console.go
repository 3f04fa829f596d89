// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/gps_reader/internal/gps"
	"github.com/relabs-tech/gps_reader/internal/serialport"
	"github.com/relabs-tech/gps_reader/internal/sink"
)

// consoleSink prints readings instead of publishing them.
type consoleSink struct {
	now func() time.Time
}

func (c consoleSink) Publish(fix gps.Fix) {
	fmt.Println(formatReading(sink.Reading{Available: true, Fix: &fix, UpdatedAt: fix.CapturedAt}))
}

func (c consoleSink) PublishUnavailable() {
	fmt.Println(formatReading(sink.Reading{UpdatedAt: c.now()}))
}

// RunMockConsole runs the full reader pipeline against the simulated
// receiver and prints accepted fixes. No broker or hardware needed.
func RunMockConsole(ctx context.Context, debug bool) error {
	sim := serialport.NewSimulator()
	sim.Interval = 200 * time.Millisecond

	reader := gps.NewReader(gps.Config{
		Device:     serialport.SimulatorDevice,
		Baud:       4800,
		MinQuality: 1,
		Tolerance:  1e-3,
		Debug:      debug,
	}, sim, consoleSink{now: time.Now})

	err := reader.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
