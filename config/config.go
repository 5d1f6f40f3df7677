// Package config persists simulator-only bootstrap settings for
// cmd/performer: the defaults a harness needs before the engine has a
// project loaded from anywhere else. Engine-internal compile-time sizing
// constants are params.PPQN/TrackCount/PatternCount/StepCount, not this
// package — those are fixed the way the firmware's #defines are, while
// this package's values are the kind of thing a person running the
// harness would actually want to change between runs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jstefani/performer/engine/clock"
)

// Config is the bootstrap configuration loaded by cmd/performer before it
// constructs an engine.Engine.
type Config struct {
	Bpm float64 `json:"bpm"`

	MidiInPortName  string `json:"midiInPortName,omitempty"`
	MidiOutPortName string `json:"midiOutPortName,omitempty"`

	// AutoClockSource names which slave source to enable on startup
	// ("external", "midi", "usbMidi"), or "" for master-only.
	AutoClockSource string `json:"autoClockSource,omitempty"`
}

// DefaultConfig returns a config with sensible defaults: 120 BPM, no ports
// bound, no slave source auto-enabled (free-running master clock).
func DefaultConfig() *Config {
	return &Config{
		Bpm: 120,
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "performer"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk, creating its directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SlaveSource resolves AutoClockSource to a clock.SlaveSource, matching
// spec section 6's named clock sources. ok is false for an empty or
// unrecognized name, in which case the caller leaves the clock on its
// free-running master.
func (c *Config) SlaveSource() (source clock.SlaveSource, ok bool) {
	switch c.AutoClockSource {
	case "external":
		return clock.SourceExternal, true
	case "midi":
		return clock.SourceMidi, true
	case "usbMidi":
		return clock.SourceUsbMidi, true
	default:
		return 0, false
	}
}
