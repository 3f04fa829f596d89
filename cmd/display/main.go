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
	"github.com/relabs-tech/gps_reader/internal/config"
)

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", "gps_config.txt", "Configuration file to use (KEY=VALUE or .toml).")
	flag.Parse()

	log.Println("starting gps-reader OLED display (MQTT subscriber)")

	if err := config.InitGlobal(confFile); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDisplay(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
