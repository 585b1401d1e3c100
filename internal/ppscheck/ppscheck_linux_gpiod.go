//go:build linux && (arm || arm64)

// Package ppscheck verifies that the configured timepulse output actually
// toggles the GPIO line it is wired to.
package ppscheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// WaitForPulses watches the given BCM GPIO for rising edges from the
// receiver's timepulse output and returns nil once count edges arrive
// within timeout.
func WaitForPulses(pin, count int, timeout time.Duration) error {
	if pin <= 0 {
		return fmt.Errorf("ppscheck: invalid gpio pin %d", pin)
	}
	if count <= 0 {
		count = 1
	}

	lineName := fmt.Sprintf("GPIO%d", pin)
	edges := make(chan struct{}, 64)

	chip, line, err := requestLine(lineName, edges)
	if err != nil {
		return err
	}
	defer func() {
		_ = line.Close()
		_ = chip.Close()
	}()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	seen := 0
	for seen < count {
		select {
		case <-edges:
			seen++
		case <-deadline.C:
			return fmt.Errorf("ppscheck: saw %d/%d pulses on %s within %s", seen, count, lineName, timeout)
		}
	}
	return nil
}

func requestLine(lineName string, edges chan<- struct{}) (*gpiocdev.Chip, *gpiocdev.Line, error) {
	// Header GPIOs can land on different chips depending on the Pi kernel.
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
		}
	}

	handler := func(gpiocdev.LineEvent) {
		select {
		case edges <- struct{}{}:
		default:
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithEventHandler(handler),
			gpiocdev.WithConsumer("gnss-timesetup-pps"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return chip, line, nil
	}
	return nil, nil, fmt.Errorf("ppscheck: gpio line %q not found (or busy)", lineName)
}
