// Package playstate implements C3, the play-state request machine:
// coordinating mute/pattern changes across tracks with three timing
// classes (Immediate, Synced, Latched).
package playstate

import (
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

// MeasureDivisor returns M, the tick count of one sync measure, per spec
// section 4.3: syncMeasure bars * PPQN * 4 (quarter notes per bar at 4/4).
func MeasureDivisor(syncMeasure int) uint32 {
	if syncMeasure < 1 {
		syncMeasure = 1
	}
	return uint32(syncMeasure) * params.PPQN * 4
}

// Fraction returns (tick mod M)/M, per spec section 6's
// syncMeasureFraction(): always in [0, 1), exactly 0 at multiples of M.
func Fraction(tick uint32, syncMeasure int) float64 {
	m := MeasureDivisor(syncMeasure)
	return float64(tick%m) / float64(m)
}

// atSyncedBoundary reports whether tick is a synced-measure commit point:
// the first or last tick of the measure (spec 4.3).
func atSyncedBoundary(tick uint32, m uint32) bool {
	return tick%m == 0 || tick%m == m-1
}

// Evaluate runs one tick of C3 over every track, in track-index order
// (spec 4.3, rules 1-4). It commits (mute, pattern) from whichever request
// classes are due this tick, clears the classes considered, and returns
// true if play state actually changed for any track.
//
// Tie-break: within one evaluation a track's mute and pattern are each
// committed once from whichever classes are due; if more than one class is
// due simultaneously, the source value is the same RequestedMute/
// RequestedPattern for all of them, so "last one considered wins" reduces
// to: Immediate always applies, then Synced may override it, then Latched
// may override that — Latched has final say, matching spec's "simultaneous
// Immediate+Synced collapses to one transition" decision (Design Note 9).
func Evaluate(ps *model.PlayState, tick uint32, syncMeasure int) bool {
	hasImmediate := ps.HasAnyImmediate()
	hasSynced := ps.HasAnySynced()
	handleLatched := ps.TakeLatchRelease()

	if !hasImmediate && !hasSynced && !handleLatched {
		return false
	}

	m := MeasureDivisor(syncMeasure)
	handleSynced := atSyncedBoundary(tick, m)

	muteClasses := model.RequestImmediate
	patternClasses := model.RequestImmediate
	if handleSynced {
		muteClasses |= model.RequestSynced
		patternClasses |= model.RequestSynced
	}
	if handleLatched {
		muteClasses |= model.RequestLatched
		patternClasses |= model.RequestLatched
	}

	changed := false
	for i := range ps.Tracks {
		t := &ps.Tracks[i]

		if t.HasMuteRequest(muteClasses) {
			if t.Mute != t.RequestedMute {
				changed = true
			}
			t.Mute = t.RequestedMute
		}
		if t.HasPatternRequest(patternClasses) {
			if t.Pattern != t.RequestedPattern {
				changed = true
			}
			t.Pattern = t.RequestedPattern
		}

		t.ClearMuteRequests(muteClasses)
		t.ClearPatternRequests(patternClasses)
	}

	return changed
}
