package model

import "github.com/jstefani/performer/params"

// RequestClass identifies a timing class a mute/pattern request can belong
// to. They compose as bit flags so a single request can be pending under
// more than one class at once (spec section 3).
type RequestClass int

const (
	RequestImmediate RequestClass = 1 << iota
	RequestSynced
	RequestLatched
)

// TrackState is the runtime play state of one track: its committed
// (mute, fill, pattern) plus any pending requests for mute/pattern changes.
type TrackState struct {
	Mute    bool
	Fill    bool
	Pattern int

	RequestedMute    bool
	RequestedPattern int

	muteRequests    RequestClass
	patternRequests RequestClass
}

// RequestMute stages a mute change under the given classes, ORing them into
// whatever is already pending (spec 3: "a track's mute-request set").
func (t *TrackState) RequestMute(mute bool, classes RequestClass) {
	t.RequestedMute = mute
	t.muteRequests |= classes
}

// RequestPattern stages a pattern change under the given classes.
func (t *TrackState) RequestPattern(pattern int, classes RequestClass) {
	t.RequestedPattern = pattern
	t.patternRequests |= classes
}

// HasMuteRequest reports whether any of classes is pending for mute.
func (t *TrackState) HasMuteRequest(classes RequestClass) bool {
	return t.muteRequests&classes != 0
}

// HasPatternRequest reports whether any of classes is pending for pattern.
func (t *TrackState) HasPatternRequest(classes RequestClass) bool {
	return t.patternRequests&classes != 0
}

// ClearMuteRequests clears the given classes from the pending mute-request
// set.
func (t *TrackState) ClearMuteRequests(classes RequestClass) {
	t.muteRequests &^= classes
}

// ClearPatternRequests clears the given classes from the pending
// pattern-request set.
func (t *TrackState) ClearPatternRequests(classes RequestClass) {
	t.patternRequests &^= classes
}

// HasAnyImmediate, HasAnySynced report whether any track has a pending
// request under that class, so C3 can skip the whole per-tick pass cheaply
// when nothing is staged (mirrors PlayState::hasImmediateRequests /
// hasSyncedRequests in the firmware).
func (p *PlayState) HasAnyImmediate() bool { return p.hasAny(RequestImmediate) }
func (p *PlayState) HasAnySynced() bool    { return p.hasAny(RequestSynced) }

func (p *PlayState) hasAny(class RequestClass) bool {
	for i := range p.Tracks {
		if p.Tracks[i].muteRequests&class != 0 || p.Tracks[i].patternRequests&class != 0 {
			return true
		}
	}
	return false
}

// PlayState is the per-project play state across all tracks, plus the
// latch-release flag the UI toggles when the user releases a latch button.
type PlayState struct {
	Tracks [params.TrackCount]TrackState

	latchRelease bool
}

// NewPlayState returns a PlayState with all tracks unmuted, unfilled,
// playing pattern 0.
func NewPlayState() *PlayState {
	return &PlayState{}
}

// RequestLatchRelease arms the one-shot flag C3 consumes on the next
// Evaluate call (spec section 4.3's "handleLatchedRequests from a UI
// flag").
func (p *PlayState) RequestLatchRelease() { p.latchRelease = true }

// TakeLatchRelease reports and clears the latch-release flag.
func (p *PlayState) TakeLatchRelease() bool {
	v := p.latchRelease
	p.latchRelease = false
	return v
}
