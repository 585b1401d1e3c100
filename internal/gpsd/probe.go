// Package gpsd probes the daemon that bridges ubxtool to the receiver.
package gpsd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"
)

const defaultAddr = "127.0.0.1:2947"

type Version struct {
	Release    string `json:"release"`
	Revision   string `json:"rev"`
	ProtoMajor int    `json:"proto_major"`
	ProtoMinor int    `json:"proto_minor"`
}

// Probe dials gpsd and reads the VERSION banner it announces on connect.
// A failure here means no receiver command could succeed either.
func Probe(ctx context.Context, addr string) (Version, error) {
	if strings.TrimSpace(addr) == "" {
		addr = defaultAddr
	}
	d := &net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Version{}, fmt.Errorf("gpsd not reachable at %s: %v", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	}

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var base struct {
			Class string `json:"class"`
		}
		if err := json.Unmarshal([]byte(line), &base); err != nil {
			return Version{}, fmt.Errorf("gpsd banner parse failed: %v", err)
		}
		// Ignore other unsolicited messages (e.g. DEVICES).
		if !strings.EqualFold(base.Class, "VERSION") {
			continue
		}
		var v Version
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return Version{}, fmt.Errorf("gpsd version parse failed: %v", err)
		}
		return v, nil
	}
	if err := sc.Err(); err != nil {
		return Version{}, fmt.Errorf("gpsd banner read failed: %v", err)
	}
	return Version{}, fmt.Errorf("gpsd closed connection before VERSION")
}
