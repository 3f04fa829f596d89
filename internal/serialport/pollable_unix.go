// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux || darwin

package serialport

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// pollable moves an open port onto the runtime poller. go-serial leaves the
// descriptor blocking, and closing a blocking *os.File waits for a pending
// Read to finish. A non-blocking duplicate lets Close interrupt the read.
func pollable(device string, port io.ReadWriteCloser) (io.ReadWriteCloser, error) {
	f, ok := port.(*os.File)
	if !ok {
		return port, nil
	}
	defer f.Close()

	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("dup %s: %w", device, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set non-blocking %s: %w", device, err)
	}
	return os.NewFile(uintptr(fd), device), nil
}
