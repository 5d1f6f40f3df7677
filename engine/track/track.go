// Package track implements C2, the polymorphic per-track engine: a
// tagged-variant sum type over {Note, Curve, MidiCv} held in pre-allocated,
// in-place storage, plus the per-variant processing each mode needs.
package track

import (
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
)

// Engine is the contract every track variant implements (spec 4.2). All
// operations are total: an out-of-range subIndex is clamped rather than
// erroring.
type Engine interface {
	Reset()
	Tick(globalTick uint32)
	Update(dt float64)
	ReceiveMidi(port midi.Port, channel uint8, msg midi.Message)

	SetMute(mute bool)
	SetFill(fill bool)
	SetPattern(pattern int)
	SetSwing(swing int)

	GateOutput(subIndex int) bool
	CvOutput(subIndex int) float32
	IdleGateOutput(subIndex int) bool
	IdleCvOutput(subIndex int) float32
	IdleOutput() bool
	ClearIdleOutput()

	TrackMode() model.TrackMode

	// ChannelCount is k: how many physical channels this variant's outputs
	// span (spec 4.2's subIndex contract), needed by C5 to know how far to
	// iterate subIndex for a multi-channel source.
	ChannelCount() int

	// LinkTrack is the non-owning index of the track whose timing this
	// engine follows, or model.NoLink.
	LinkTrack() int
}

// clamp confines subIndex to [0, k-1], matching the "invalid subIndex is
// clamped" failure rule (spec 4.2).
func clamp(subIndex, k int) int {
	if k <= 0 {
		return 0
	}
	if subIndex < 0 {
		return 0
	}
	if subIndex >= k {
		return k - 1
	}
	return subIndex
}

// baseEngine holds the state every variant shares: mute/fill/pattern/swing,
// the link-track back-reference, and the one-shot idle-display latch that
// C5 reads and clears (spec 4.5's "clearIdleOutput on every engine that is
// not the currently selected track").
type baseEngine struct {
	mute   bool
	fill   bool
	pattern int
	swing  int

	linkTrack int

	idleShown bool
}

func (b *baseEngine) SetMute(mute bool)      { b.mute = mute }
func (b *baseEngine) SetFill(fill bool)      { b.fill = fill }
func (b *baseEngine) SetPattern(pattern int) { b.pattern = pattern }
func (b *baseEngine) SetSwing(swing int)     { b.swing = swing }
func (b *baseEngine) LinkTrack() int         { return b.linkTrack }
func (b *baseEngine) ClearIdleOutput()       { b.idleShown = false }
