// Package model specifies the contract the engine consumes and mutates: the
// project description, play-state requests, and clock setup. Persistence,
// the UI, and the full editing surface are out-of-scope external
// collaborators (spec section 1) — this package defines only the shape the
// engine reads and writes, not how it is authored or saved.
package model

import "github.com/jstefani/performer/params"

// TrackMode selects which TrackEngine variant a track slot runs.
type TrackMode int

const (
	TrackModeNote TrackMode = iota
	TrackModeCurve
	TrackModeMidiCv
)

func (m TrackMode) String() string {
	switch m {
	case TrackModeNote:
		return "note"
	case TrackModeCurve:
		return "curve"
	case TrackModeMidiCv:
		return "midicv"
	default:
		return "unknown"
	}
}

// NoLink is the sentinel LinkTrack value meaning "does not follow another
// track's timing".
const NoLink = -1

// TrackConfig is the persisted, UI-editable configuration of one track
// slot. Section 3's invariant — a Note/Curve track may link to any other
// Note/Curve track, MidiCv tracks never link, and links must not cycle — is
// enforced by Project.SetLinkTrack, not by this struct alone.
type TrackConfig struct {
	TrackMode TrackMode
	LinkTrack int // -1 (NoLink) or index of another track
}

// ClockMode selects how the digital clock input/output pin behaves.
type ClockMode int

const (
	ClockModeReset ClockMode = iota
	ClockModeStartStop
)

// ClockSetup is the persisted clock configuration (spec section 6).
type ClockSetup struct {
	ClockInputMode     ClockMode
	ClockInputDivisor  int
	ClockOutputMode    ClockMode
	ClockOutputDivisor int
	ClockOutputPulse   int // milliseconds

	MidiRx bool
	UsbRx  bool
	MidiTx bool
	UsbTx  bool

	dirty bool
}

// NewClockSetup returns sensible defaults: no slaves enabled, 1:1 divisors,
// a 5ms output pulse.
func NewClockSetup() *ClockSetup {
	return &ClockSetup{
		ClockInputDivisor:  1,
		ClockOutputDivisor: 1,
		ClockOutputPulse:   5,
		dirty:              true,
	}
}

// IsDirty reports whether the clock setup has changed since the last
// ClearDirty, matching the firmware's dirty-flag reconfiguration gate in
// Engine::updateClockSetup.
func (c *ClockSetup) IsDirty() bool { return c.dirty }

// ClearDirty acknowledges the current configuration has been applied.
func (c *ClockSetup) ClearDirty() { c.dirty = false }

// SetClockInputDivisor validates and stores a new input divisor,
// reverting to 1 (a ConfigurationError per spec section 7) if out of range.
func (c *ClockSetup) SetClockInputDivisor(d int) error {
	if d < 1 || d > params.MaxSlaveDivisor {
		c.ClockInputDivisor = 1
		c.dirty = true
		return &ConfigurationError{Setting: "clockInputDivisor", Value: d}
	}
	c.ClockInputDivisor = d
	c.dirty = true
	return nil
}

// SetClockOutputDivisor validates and stores a new output divisor.
func (c *ClockSetup) SetClockOutputDivisor(d int) error {
	if d < 1 || d > params.MaxSlaveDivisor {
		c.ClockOutputDivisor = 1
		c.dirty = true
		return &ConfigurationError{Setting: "clockOutputDivisor", Value: d}
	}
	c.ClockOutputDivisor = d
	c.dirty = true
	return nil
}

// MarkDirty forces the clock to be reconfigured on the next engine update,
// used by setters that flip mode/Rx/Tx flags without validating a range.
func (c *ClockSetup) MarkDirty() { c.dirty = true }

// Project is the read-by-engine, mutated-by-UI-under-lock model.
type Project struct {
	Bpm         float64
	SyncMeasure int // bars, >= 1
	Swing       int // percent

	Tracks    [params.TrackCount]TrackConfig
	PlayState PlayState
	Clock     ClockSetup
	Routings  RoutingTable

	GateOutputTracks [params.TrackCount]int // logical track feeding physical gate channel i
	CvOutputTracks   [params.TrackCount]int // logical track feeding physical CV channel i

	SelectedTrackIndex int
}

// NewProject returns a project with N tracks all in Note mode, unlinked,
// routed 1:1 to their own physical channel, at 120 BPM.
func NewProject() *Project {
	p := &Project{
		Bpm:         120,
		SyncMeasure: 1,
		Clock:       *NewClockSetup(),
		PlayState:   *NewPlayState(),
	}
	for i := range p.Tracks {
		p.Tracks[i] = TrackConfig{TrackMode: TrackModeNote, LinkTrack: NoLink}
		p.GateOutputTracks[i] = i
		p.CvOutputTracks[i] = i
	}
	return p
}

// SetLinkTrack validates the link-track invariant (section 3): no self
// link, no MidiCv participation, and no cycles. On violation it reports a
// ConfigurationError and leaves the link unset (NoLink), matching the
// revert-to-default policy of spec section 7.
func (p *Project) SetLinkTrack(track, link int) error {
	if link == NoLink {
		p.Tracks[track].LinkTrack = NoLink
		return nil
	}
	if track < 0 || track >= params.TrackCount {
		return &ConfigurationError{Setting: "linkTrack", Value: link}
	}
	if link < 0 || link >= params.TrackCount {
		p.Tracks[track].LinkTrack = NoLink
		return &ConfigurationError{Setting: "linkTrack", Value: link}
	}
	if p.Tracks[track].TrackMode == TrackModeMidiCv || p.Tracks[link].TrackMode == TrackModeMidiCv {
		p.Tracks[track].LinkTrack = NoLink
		return &ConfigurationError{Setting: "linkTrack", Value: link}
	}
	if track == link || p.linkCreatesCycle(track, link) {
		p.Tracks[track].LinkTrack = NoLink
		return &ConfigurationError{Setting: "linkTrack", Value: link}
	}
	p.Tracks[track].LinkTrack = link
	return nil
}

// linkCreatesCycle walks the link chain starting at candidate link and
// reports whether it ever reaches track again.
func (p *Project) linkCreatesCycle(track, link int) bool {
	seen := make(map[int]bool)
	cur := link
	for cur != NoLink {
		if cur == track {
			return true
		}
		if seen[cur] {
			return false // unrelated pre-existing cycle elsewhere; don't compound it
		}
		seen[cur] = true
		cur = p.Tracks[cur].LinkTrack
	}
	return false
}
