// Package generators implements the pattern-synthesis satellite described
// only at interface level in spec section 2: a small family of algorithmic
// pattern generators (Euclidean, Random, QuickRandom) behind one Generator
// contract, plus the engine-owned singleton slot that holds at most one
// live generator at a time.
package generators

import "github.com/jstefani/performer/params"

// PatternLength matches the Note track engine's step count, so a
// generator's output can be copied directly into a Step pattern.
const PatternLength = params.StepCount

// Pattern is a generator's output buffer: one value per step, in [0, 1].
type Pattern [PatternLength]float32

// Mode selects which Generator variant a slot holds.
type Mode int

const (
	ModeEuclidean Mode = iota
	ModeRandom
	ModeQuickRandom
)

// Generator is the shared contract every variant implements.
type Generator interface {
	Mode() Mode
	Update()
	Pattern() Pattern
}

// Slot is the engine-owned singleton storage: at most one generator is
// live across the process (spec Design Note "Global generator container"),
// modeled as a tagged variant the same way track.Container holds track
// engines.
type Slot struct {
	active Generator
}

// Acquire releases whatever generator is currently held and constructs a
// new one of the given mode, matching Generator::create's switch-dispatch
// into a single shared container.
func (s *Slot) Acquire(mode Mode) Generator {
	switch mode {
	case ModeEuclidean:
		s.active = NewEuclideanGenerator()
	case ModeRandom:
		s.active = NewRandomGenerator()
	default:
		s.active = NewQuickRandomGenerator()
	}
	return s.active
}

// Release drops the held generator; Go's GC stands in for the firmware's
// explicit placement-destroy.
func (s *Slot) Release() { s.active = nil }

// Active returns the currently held generator, or nil if none.
func (s *Slot) Active() Generator { return s.active }
