// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package serialport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"go.bug.st/serial/enumerator"
)

// USB identifiers of the Prolific PL2303 bridge found in common NMEA
// receivers.
const (
	DefaultVID = "067B"
	DefaultPID = "23A3"
)

var ErrNoDevice = errors.New("serialport: no matching GPS device found")

// listPorts is replaced in tests.
var listPorts = enumerator.GetDetailedPortsList

// Discover returns the path of the first USB serial port whose vendor and
// product identifiers match vid and pid. Every candidate is logged so users
// can find the right path to configure by hand.
func Discover(vid, pid string) (string, error) {
	return discover(vid, pid, true)
}

func discover(vid, pid string, verbose bool) (string, error) {
	ports, err := listPorts()
	if err != nil {
		return "", fmt.Errorf("serialport: enumerate ports: %w", err)
	}

	for _, p := range ports {
		if p == nil {
			continue
		}
		if !p.IsUSB {
			if verbose {
				log.Printf("serialport: found non-USB port %s", p.Name)
			}
			continue
		}
		if verbose {
			log.Printf("serialport: found device %s:%s @ %s", strings.ToLower(p.VID), strings.ToLower(p.PID), p.Name)
		}
		if strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
			return p.Name, nil
		}
	}
	return "", ErrNoDevice
}

// Discovering looks the device up on every Open, so a receiver plugged in
// after startup (or moved to another port) is still found. Candidates are
// logged on the first attempt after a successful open only.
type Discovering struct {
	VID, PID string
	Opener   Opener

	quiet atomic.Bool
}

func (d *Discovering) Open(ctx context.Context, device string, baud int) (LineStream, error) {
	verbose := !d.quiet.Swap(true)
	found, err := discover(d.VID, d.PID, verbose)
	if err != nil {
		return nil, unreachable(device, err)
	}
	s, err := d.Opener.Open(ctx, found, baud)
	if err != nil {
		return nil, err
	}
	d.quiet.Store(false)
	return s, nil
}
