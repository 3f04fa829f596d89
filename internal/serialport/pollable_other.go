// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux && !darwin

package serialport

import "io"

// pollable is a no-op here. Close does not interrupt a pending Read, so
// cancellation waits for the next byte from the device.
func pollable(device string, port io.ReadWriteCloser) (io.ReadWriteCloser, error) {
	return port, nil
}
