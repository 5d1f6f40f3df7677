package generators

import "math/rand"

// Quick-random mode thresholds. The original firmware source selected
// between three unrelated behaviors by comparing a single "seed" parameter
// against magic numbers (seed < 25, == 25, == 26) inside commented-out,
// clearly exploratory code. These constants preserve the exact thresholds
// as a compatibility artifact — not because 25 and 26 mean anything, but
// because changing them would silently change which of the three
// behaviors a saved seed value selects.
const (
	probabilisticThreshold = 25 // seed < this: gate probability mode
	presetBeatSeed         = 25 // seed == this: cycle the preset beat table
	randomNoteSeed          = 26 // seed == this: random note in a 3-octave range
)

// presetBeats is the original firmware's 12-entry beat table, carried
// over verbatim; each row is a 16-step gate pattern.
var presetBeats = [12][PatternLength]int{
	{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}, // 4 on the floor
	{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0}, // 5 and 9
	{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0}, // untz, untz
	{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 1, 0},
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0},
	{0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0},
	{0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0},
	{1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 1, 0},
	{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0},
	{1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 0},
}

// QuickRandomGenerator is a faithful port of the firmware's namesake
// generator: one "Seed" parameter selects between probabilistic gating,
// cycling through presetBeats, or random-note generation, with an
// optional smoothing pass applied to the raw (pre-mode) random buffer.
type QuickRandomGenerator struct {
	Seed   int // 0-1000
	Smooth int // 0-10 smoothing iterations
	Bias   int // -10-10, carried over unapplied (see Update)
	Scale  int // 0-100, carried over unapplied (see Update)

	currentBeat int

	pattern Pattern
}

func NewQuickRandomGenerator() *QuickRandomGenerator {
	g := &QuickRandomGenerator{Scale: 10}
	g.Update()
	return g
}

func (g *QuickRandomGenerator) Mode() Mode      { return ModeQuickRandom }
func (g *QuickRandomGenerator) Pattern() Pattern { return g.pattern }

// Update rebuilds the pattern from the current Seed. Bias and Scale are
// intentionally unapplied: the original computed them but never used the
// result on the value actually written out, per the commented-out lines
// in the source this is grounded on.
func (g *QuickRandomGenerator) Update() {
	rng := rand.New(rand.NewSource(int64(g.Seed)))

	raw := make([]int, PatternLength)
	for i := range raw {
		raw[i] = rng.Intn(256)
	}

	for iter := 0; iter < g.Smooth; iter++ {
		smoothed := make([]int, PatternLength)
		for i := range raw {
			prev := raw[(i-1+PatternLength)%PatternLength]
			next := raw[(i+1)%PatternLength]
			smoothed[i] = (4*raw[i] + prev + next + 3) / 6
		}
		raw = smoothed
	}

	if len(presetBeats) > 0 && g.currentBeat > len(presetBeats)-1 {
		g.currentBeat = 0
	}

	switch {
	case g.Seed < probabilisticThreshold:
		for i := range raw {
			complexity := rng.Intn(16)
			if complexity <= g.Seed {
				raw[i] = 200
			} else {
				raw[i] = 0
			}
		}
	case g.Seed == presetBeatSeed:
		beat := presetBeats[g.currentBeat]
		for i := range raw {
			idx := i % PatternLength
			if beat[idx] == 1 {
				raw[i] = 200 + 1 // marked active steps translate to a gate-on value
			} else {
				raw[i] = 0
			}
		}
	case g.Seed == randomNoteSeed:
		for i := range raw {
			raw[i] = rng.Intn(128) + 80 // notes in a 3-octave range above the cutoff
		}
	}

	var p Pattern
	for i, v := range raw {
		p[i] = float32(v) / 255.0
	}
	g.pattern = p

	if g.Seed == presetBeatSeed {
		g.currentBeat++
	}
}
