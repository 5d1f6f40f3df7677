package config

import (
	"testing"

	"github.com/jstefani/performer/engine/clock"
)

func TestDefaultConfigHasNoAutoClockSource(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := cfg.SlaveSource(); ok {
		t.Errorf("expected default config to leave the clock free-running")
	}
	if cfg.Bpm != 120 {
		t.Errorf("Bpm = %v, want 120", cfg.Bpm)
	}
}

func TestSlaveSourceResolvesNamedSources(t *testing.T) {
	cases := []struct {
		name   string
		want   clock.SlaveSource
		wantOk bool
	}{
		{"external", clock.SourceExternal, true},
		{"midi", clock.SourceMidi, true},
		{"usbMidi", clock.SourceUsbMidi, true},
		{"", 0, false},
		{"bogus", 0, false},
	}

	for _, c := range cases {
		cfg := &Config{AutoClockSource: c.name}
		got, ok := cfg.SlaveSource()
		if ok != c.wantOk || (ok && got != c.want) {
			t.Errorf("SlaveSource() with name %q = (%v, %v), want (%v, %v)", c.name, got, ok, c.want, c.wantOk)
		}
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bpm != 120 {
		t.Errorf("Bpm = %v, want 120 from defaults", cfg.Bpm)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &Config{Bpm: 140, MidiInPortName: "Test In", AutoClockSource: "midi"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Bpm != 140 || loaded.MidiInPortName != "Test In" || loaded.AutoClockSource != "midi" {
		t.Errorf("loaded = %+v, want round trip of %+v", loaded, cfg)
	}
}
