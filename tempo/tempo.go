// Package tempo implements C7: tap-tempo estimation from a ring of recent
// tap timestamps, and nudge modulation that ramps a strength factor toward
// a target direction and applies it as a BPM offset.
package tempo

import "sort"

// tapRingSize bounds how many recent taps feed the median filter; it is a
// fixed array, no allocation after construction.
const tapRingSize = 8

// minTapsForEstimate is the fewest intervals needed before tapTempo
// publishes a BPM instead of leaving the project's tempo untouched.
const minTapsForEstimate = 3

// nudgeRampPerSecond is how fast strength moves toward its target per
// second of update(dt) (spec S6: reaches the target over ~1s at 120 BPM).
const nudgeRampPerSecond = 1.0

// nudgeMaxOffsetBpm is the BPM swing at full nudge strength (spec 4.7).
const nudgeMaxOffsetBpm = 10.0

// TapTempo estimates BPM from the intervals between taps, using a ring
// buffer and a median filter to reject one-off outliers (spec 4.7).
type TapTempo struct {
	intervals [tapRingSize]float64
	count     int
	next      int

	lastTapAt   float64
	haveLastTap bool

	elapsed float64
}

// NewTapTempo returns an empty tap-tempo estimator.
func NewTapTempo() *TapTempo { return &TapTempo{} }

// Advance must be called with the same wall-clock dt as the rest of the
// engine so Tap can timestamp itself without depending on a system clock.
func (t *TapTempo) Advance(dt float64) { t.elapsed += dt }

// Reset clears the ring, matching tapTempoReset in the exposed engine API
// (spec section 6) — used when the user pauses tapping long enough that
// stale intervals would corrupt the next estimate.
func (t *TapTempo) Reset() {
	*t = TapTempo{elapsed: t.elapsed}
}

// Tap records one tap at the current elapsed time and returns the
// median-filtered BPM once enough intervals have accumulated. ok is false
// before minTapsForEstimate intervals are available.
func (t *TapTempo) Tap() (bpm float64, ok bool) {
	now := t.elapsed
	if t.haveLastTap {
		interval := now - t.lastTapAt
		if interval > 0 {
			t.intervals[t.next] = interval
			t.next = (t.next + 1) % tapRingSize
			if t.count < tapRingSize {
				t.count++
			}
		}
	}
	t.lastTapAt = now
	t.haveLastTap = true

	if t.count < minTapsForEstimate {
		return 0, false
	}
	return 60.0 / median(t.intervals[:t.count]), true
}

func median(vs []float64) float64 {
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// NudgeTempo ramps a strength factor toward a target direction and reports
// the BPM offset to apply on top of the project tempo (spec 4.7).
type NudgeTempo struct {
	direction int // -1, 0, or +1
	strength  float64
}

// NewNudgeTempo returns a nudge controller at rest.
func NewNudgeTempo() *NudgeTempo { return &NudgeTempo{} }

// SetDirection sets the target direction; any nonzero value is clamped to
// ±1 (spec 4.7's "±1 or 0").
func (n *NudgeTempo) SetDirection(direction int) {
	switch {
	case direction > 0:
		n.direction = 1
	case direction < 0:
		n.direction = -1
	default:
		n.direction = 0
	}
}

// Update ramps strength toward the target direction by dt seconds' worth
// of nudgeRampPerSecond, clamped to [0, 1] (or [-1, 0] while ramping down
// from a negative nudge) — sign tracks the target direction.
func (n *NudgeTempo) Update(dt float64) {
	target := float64(n.direction)
	step := nudgeRampPerSecond * dt
	if n.strength < target {
		n.strength += step
		if n.strength > target {
			n.strength = target
		}
	} else if n.strength > target {
		n.strength -= step
		if n.strength < target {
			n.strength = target
		}
	}
}

// Strength returns the current ramped strength in [-1, 1].
func (n *NudgeTempo) Strength() float64 { return n.strength }

// Offset returns the BPM offset to add to the project tempo.
func (n *NudgeTempo) Offset() float64 { return nudgeMaxOffsetBpm * n.strength }
