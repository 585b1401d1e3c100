package ubx

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// Configuration memory layers understood by the receiver.
const (
	LayerRAM   = 1
	LayerBBR   = 2
	LayerFlash = 4
)

// Outcome classifies a single configuration command.
type Outcome int

const (
	Applied Outcome = iota
	NotApplicable
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NotApplicable:
		return "not applicable"
	default:
		return "failed"
	}
}

// Runner executes configuration items as ubxtool invocations against a
// receiver reachable through gpsd.
type Runner struct {
	Path            string
	ProtocolVersion string
	GPSDAddr        string
	Timeout         time.Duration

	// execFn runs the tool and returns its combined output. Replaced in
	// tests.
	execFn func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewRunner(path, protocolVersion, gpsdAddr string, timeout time.Duration) *Runner {
	return &Runner{
		Path:            path,
		ProtocolVersion: protocolVersion,
		GPSDAddr:        gpsdAddr,
		Timeout:         timeout,
		execFn:          runCombined,
	}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Args returns the full ubxtool argument list for writing one item at the
// given layer. Exposed so the dry-run plan matches what would be executed.
func (r *Runner) Args(item Item, layer int) []string {
	return []string{
		"-P", r.ProtocolVersion,
		"-w", "2",
		"-z", fmt.Sprintf("%s,%s,%d", item.Key, item.Value, layer),
		r.GPSDAddr,
	}
}

// apply writes one item at the given layer and classifies the tool output.
func (r *Runner) apply(ctx context.Context, item Item, layer int) (Outcome, error) {
	cctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	out, err := r.execFn(cctx, r.Path, r.Args(item, layer)...)
	if err != nil {
		return Failed, fmt.Errorf("%s: %v, output: %s", item.Name, err, tail(out))
	}
	s := string(out)
	switch {
	case strings.Contains(s, "UBX-ACK-NAK"):
		return NotApplicable, nil
	case strings.Contains(s, "UBX-ACK-ACK"):
		return Applied, nil
	default:
		return Failed, fmt.Errorf("%s: no acknowledgement from receiver, output: %s", item.Name, tail(out))
	}
}

// Report lists what a configuration pass did.
type Report struct {
	Applied []Item
	Skipped []Item
}

// Configure writes every item to the RAM layer in order. A NAK on an
// optional item skips it; a NAK on a required item or any tool failure
// aborts the run.
func (r *Runner) Configure(ctx context.Context, items []Item) (Report, error) {
	var rep Report
	for _, item := range items {
		outcome, err := r.apply(ctx, item, LayerRAM)
		if err != nil {
			return rep, err
		}
		switch outcome {
		case Applied:
			log.Printf("applied: %s (%s=%s)", item.Name, item.Key, item.Value)
			rep.Applied = append(rep.Applied, item)
		case NotApplicable:
			if !item.Optional {
				return rep, fmt.Errorf("%s: receiver rejected %s=%s", item.Name, item.Key, item.Value)
			}
			log.Printf("not applicable on this receiver: %s", item.Name)
			rep.Skipped = append(rep.Skipped, item)
		}
	}
	return rep, nil
}

// Persist writes the given items to non-volatile storage: the flash layer
// first, falling back to battery-backed RAM when the receiver has none.
func (r *Runner) Persist(ctx context.Context, items []Item) error {
	layer := LayerFlash
	for i := 0; i < len(items); {
		item := items[i]
		outcome, err := r.apply(ctx, item, layer)
		if err != nil {
			return err
		}
		if outcome == NotApplicable {
			if layer == LayerFlash {
				log.Printf("flash layer rejected %s; falling back to battery-backed storage", item.Key)
				layer = LayerBBR
				continue // retry the same item at the fallback layer
			}
			return fmt.Errorf("%s: receiver rejected persisting %s", item.Name, item.Key)
		}
		i++
	}
	return nil
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	const max = 300
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
