//go:build !linux || (!arm && !arm64)

// Package ppscheck verifies that the configured timepulse output actually
// toggles the GPIO line it is wired to.
package ppscheck

import (
	"fmt"
	"time"
)

// Stub implementation for non-Linux and/or non-ARM platforms.
func WaitForPulses(pin, count int, timeout time.Duration) error {
	return fmt.Errorf("ppscheck: gpio unsupported on this platform")
}
