// Package params holds the engine's compile-time sizing constants.
//
// These mirror the firmware's Config.h #defines: on real hardware they are
// fixed at build time because every track slot, pattern table, and tick
// counter is statically sized. Nothing in this module allocates these
// dynamically.
package params

const (
	// PPQN is pulses per quarter note, the master clock's tick resolution.
	PPQN = 192

	// TrackCount is the number of track engine slots (N in the data model).
	TrackCount = 8

	// PatternCount is the number of patterns a track can hold.
	PatternCount = 16

	// StepCount is the number of steps in one pattern of a Note/Curve track.
	StepCount = 16

	// MaxSlaveDivisor bounds clockInputDivisor / clockOutputDivisor.
	MaxSlaveDivisor = 192

	// MaxPendingMidi bounds the inbound message queue standing in for the
	// firmware's fixed-size SPSC byte ring (spec section 5). A real ring
	// can't grow; neither can this.
	MaxPendingMidi = 64
)
