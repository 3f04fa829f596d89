// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gps_reader/internal/app"
)

func main() {
	debug := flag.Bool("debug", false, "Log skipped sentences.")
	duration := flag.Duration("for", 0, "Stop after this long (0 runs until Ctrl+C).")
	flag.Parse()

	log.Println("starting gps-reader (simulated receiver console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if err := app.RunMockConsole(ctx, *debug); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
