// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// Sink receives accepted fixes and connectivity loss. Both calls are made
// from the Reader goroutine; implementations must not block for long and
// must tolerate PublishUnavailable being called while already unavailable.
type Sink interface {
	Publish(fix Fix)
	PublishUnavailable()
}
