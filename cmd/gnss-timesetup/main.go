package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gnss-timesetup/internal/config"
	"gnss-timesetup/internal/fixedpoint"
	"gnss-timesetup/internal/gpsd"
	"gnss-timesetup/internal/ppscheck"
	"gnss-timesetup/internal/preflight"
	"gnss-timesetup/internal/ubx"
)

func main() {
	var configPath string
	var dryRun bool
	flag.StringVar(&configPath, "config", "./timesetup.yaml", "Path to YAML config")
	flag.BoolVar(&dryRun, "dry-run", false, "Print the command plan without touching the receiver")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	pos, err := fixedpoint.EncodePosition(cfg.Position.LatitudeDeg, cfg.Position.LongitudeDeg, cfg.Position.HeightM)
	if err != nil {
		log.Fatalf("position encode failed: %v", err)
	}

	items := ubx.Sequence(cfg, pos)
	runner := ubx.NewRunner(cfg.Receiver.UbxtoolPath, cfg.Receiver.ProtocolVersion, cfg.Receiver.GPSDAddr, cfg.Receiver.CommandTimeout)

	if dryRun {
		for _, line := range renderPlan(runner, items) {
			fmt.Println(line)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Receiver.Device != "" {
		if err := preflight.CharDevice(cfg.Receiver.Device); err != nil {
			log.Fatalf("preflight failed: %v", err)
		}
	}
	v, err := gpsd.Probe(ctx, cfg.Receiver.GPSDAddr)
	if err != nil {
		log.Fatalf("preflight failed: %v", err)
	}
	log.Printf("gpsd %s at %s", v.Release, cfg.Receiver.GPSDAddr)

	log.Printf("fixing position lat=%s lon=%s height=%sm", cfg.Position.LatitudeDeg, cfg.Position.LongitudeDeg, cfg.Position.HeightM)
	rep, err := runner.Configure(ctx, items)
	if err != nil {
		log.Fatalf("configuration failed: %v", err)
	}
	log.Printf("configured: %d applied, %d not applicable", len(rep.Applied), len(rep.Skipped))

	if err := runner.Persist(ctx, rep.Applied); err != nil {
		log.Fatalf("persist failed: %v", err)
	}
	log.Printf("configuration persisted")

	if cfg.PPSCheck.Enable {
		if err := ppscheck.WaitForPulses(cfg.PPSCheck.GPIOPin, cfg.PPSCheck.Pulses, cfg.PPSCheck.Timeout); err != nil {
			log.Fatalf("timepulse check failed: %v", err)
		}
		log.Printf("timepulse verified on GPIO%d", cfg.PPSCheck.GPIOPin)
	}
}

// renderPlan formats the exact tool invocations a run would make.
func renderPlan(r *ubx.Runner, items []ubx.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		args := r.Args(item, ubx.LayerRAM)
		out = append(out, fmt.Sprintf("%-34s %s %s", item.Name, r.Path, strings.Join(args, " ")))
	}
	return out
}
