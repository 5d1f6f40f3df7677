// Package logging wraps log/slog with component tagging and rate-limited
// hot-loop logging, grounded on chase3718-lou-guitar/go/main.go's
// package-level slog.Default() + slog.SetDefault idiom.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger = slog.Default()
	counts = make(map[string]int)
)

// EngineLogger returns the package-wide structured logger. Safe to call
// before Enable; defaults to slog.Default() so log calls before startup
// never panic.
func EngineLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Enable installs a text handler writing to w at the given level and makes
// it the default for log.* as well.
func Enable(w *os.File, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// Component returns a logger pre-tagged with a component field.
func Component(name string) *slog.Logger {
	return EngineLogger().With("component", name)
}

// Every logs at most once per n calls for a given key, for high-frequency
// hot-loop events (tick drain, MIDI receive) where per-event logging would
// itself become a real-time hazard.
func Every(n int, key string, fn func(*slog.Logger)) {
	mu.Lock()
	counts[key]++
	count := counts[key]
	mu.Unlock()

	if n <= 0 || count%n == 0 {
		fn(EngineLogger().With("count", count))
	}
}
