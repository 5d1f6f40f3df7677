package track

import (
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

// Container holds one Engine per track slot, sized to params.TrackCount.
// The firmware's inheritance-plus-placement-new slot becomes a tagged
// interface value here: Rebuild destroys the old variant (simply by
// dropping the reference; Go's GC stands in for the explicit
// destructor/placement-new the firmware needs) and constructs the new one,
// matching the "exactly one variant alive per slot" invariant (spec
// section 3) without introducing heap churn on the per-tick hot path —
// only mode changes allocate, and those happen in the engine's update pass
// (updateTrackSetups) after a track's mode has changed.
type Container struct {
	slots [params.TrackCount]Engine
}

// NewContainer builds a container with every slot in Note mode, matching
// model.NewProject's defaults.
func NewContainer() *Container {
	c := &Container{}
	for i := range c.slots {
		c.slots[i] = NewNoteTrackEngine()
	}
	return c
}

// Get returns the live engine for a track slot.
func (c *Container) Get(track int) Engine { return c.slots[track] }

// Rebuild reconstructs a slot's variant to match cfg, preserving nothing
// from the old variant. Spec section 3: "changing trackMode at runtime
// forces destruction and reconstruction of the corresponding track
// engine." Callers must only invoke this while the engine is locked or
// about to reset (spec section 3's TrackEngine invariant).
func (c *Container) Rebuild(track int, cfg model.TrackConfig) {
	switch cfg.TrackMode {
	case model.TrackModeCurve:
		e := NewCurveTrackEngine()
		e.SetLinkTrack(cfg.LinkTrack)
		c.slots[track] = e
	case model.TrackModeMidiCv:
		c.slots[track] = NewMidiCvTrackEngine()
	default:
		e := NewNoteTrackEngine()
		e.SetLinkTrack(cfg.LinkTrack)
		c.slots[track] = e
	}
}

// NeedsRebuild reports whether the live engine in track differs from
// cfg.TrackMode, so the composition root only rebuilds on an actual mode
// change (Engine.cpp's updateTrackSetups does the equivalent check before
// calling trackContainer.create).
func (c *Container) NeedsRebuild(track int, cfg model.TrackConfig) bool {
	return c.slots[track].TrackMode() != cfg.TrackMode
}

// TickAll advances every slot's tick in track-index order.
func (c *Container) TickAll(globalTick uint32) {
	for _, e := range c.slots {
		e.Tick(globalTick)
	}
}

// UpdateAll advances every slot's continuous-time state.
func (c *Container) UpdateAll(dt float64) {
	for _, e := range c.slots {
		e.Update(dt)
	}
}

// ResetAll resets every slot, used on transport start.
func (c *Container) ResetAll() {
	for _, e := range c.slots {
		e.Reset()
	}
}
