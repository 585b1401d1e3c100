package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Receiver  ReceiverConfig  `yaml:"receiver"`
	Position  PositionConfig  `yaml:"position"`
	Timepulse TimepulseConfig `yaml:"timepulse"`
	PPSCheck  PPSCheckConfig  `yaml:"pps_check"`
}

type ReceiverConfig struct {
	// Device is the receiver's node (e.g. /dev/ttyACM0). Optional; when set
	// it is checked before any command is issued.
	Device string `yaml:"device"`

	// GPSDAddr is host:port of the gpsd instance bridging ubxtool to the
	// receiver.
	GPSDAddr string `yaml:"gpsd_addr"`

	UbxtoolPath     string        `yaml:"ubxtool_path"`
	ProtocolVersion string        `yaml:"protocol_version"`
	CommandTimeout  time.Duration `yaml:"command_timeout"`
}

type PositionConfig struct {
	// Surveyed antenna position, kept as decimal strings so no precision is
	// lost before encoding.
	LatitudeDeg  string `yaml:"latitude_deg"`
	LongitudeDeg string `yaml:"longitude_deg"`
	HeightM      string `yaml:"height_m"`

	// AccuracyM is the claimed accuracy of the surveyed position in meters.
	AccuracyM float64 `yaml:"accuracy_m"`
}

type TimepulseConfig struct {
	PeriodUS     uint32 `yaml:"period_us"`
	PeriodLockUS uint32 `yaml:"period_lock_us"`
	LenUS        uint32 `yaml:"len_us"`
	LenLockUS    uint32 `yaml:"len_lock_us"`

	// Polarity: 0 = falling edge at top of second, 1 = rising edge.
	Polarity int `yaml:"polarity"`
	// Grid: 0 = UTC, 1 = GPS.
	Grid int `yaml:"grid"`
}

type PPSCheckConfig struct {
	Enable  bool          `yaml:"enable"`
	GPIOPin int           `yaml:"gpio_pin"`
	Pulses  int           `yaml:"pulses"`
	Timeout time.Duration `yaml:"timeout"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config parse failed: %v", err)
	}

	if strings.TrimSpace(cfg.Position.LatitudeDeg) == "" {
		return Config{}, fmt.Errorf("position.latitude_deg is required")
	}
	if strings.TrimSpace(cfg.Position.LongitudeDeg) == "" {
		return Config{}, fmt.Errorf("position.longitude_deg is required")
	}
	if strings.TrimSpace(cfg.Position.HeightM) == "" {
		return Config{}, fmt.Errorf("position.height_m is required")
	}
	if cfg.Position.AccuracyM < 0 {
		return Config{}, fmt.Errorf("position.accuracy_m must be >= 0")
	}
	if cfg.Position.AccuracyM == 0 {
		cfg.Position.AccuracyM = 1.0
	}

	if cfg.Receiver.GPSDAddr == "" {
		cfg.Receiver.GPSDAddr = "127.0.0.1:2947"
	}
	if cfg.Receiver.UbxtoolPath == "" {
		cfg.Receiver.UbxtoolPath = "ubxtool"
	}
	if cfg.Receiver.ProtocolVersion == "" {
		cfg.Receiver.ProtocolVersion = "29.20"
	}
	if cfg.Receiver.CommandTimeout <= 0 {
		cfg.Receiver.CommandTimeout = 10 * time.Second
	}

	// Timepulse defaults: 1 Hz, 100 ms pulse once the receiver is locked,
	// no pulse while unlocked, aligned to UTC.
	if cfg.Timepulse.PeriodUS == 0 {
		cfg.Timepulse.PeriodUS = 1000000
	}
	if cfg.Timepulse.PeriodLockUS == 0 {
		cfg.Timepulse.PeriodLockUS = 1000000
	}
	if cfg.Timepulse.LenLockUS == 0 {
		cfg.Timepulse.LenLockUS = 100000
	}
	if cfg.Timepulse.Polarity != 0 && cfg.Timepulse.Polarity != 1 {
		return Config{}, fmt.Errorf("timepulse.polarity must be 0 or 1")
	}
	if cfg.Timepulse.Grid != 0 && cfg.Timepulse.Grid != 1 {
		return Config{}, fmt.Errorf("timepulse.grid must be 0 (UTC) or 1 (GPS)")
	}

	if cfg.PPSCheck.Enable {
		if cfg.PPSCheck.GPIOPin <= 0 {
			return Config{}, fmt.Errorf("pps_check.gpio_pin is required when pps_check.enable is true")
		}
		if cfg.PPSCheck.Pulses <= 0 {
			cfg.PPSCheck.Pulses = 3
		}
		if cfg.PPSCheck.Timeout <= 0 {
			cfg.PPSCheck.Timeout = 10 * time.Second
		}
	}

	return cfg, nil
}
