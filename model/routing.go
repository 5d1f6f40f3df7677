package model

// RoutingSourceKind identifies what kind of event a routing rule reacts
// to (spec 4.4: "MIDI/CV-input events").
type RoutingSourceKind int

const (
	RoutingSourceMidiCC RoutingSourceKind = iota
	RoutingSourceMidiNote
	RoutingSourceCvInput
)

// RoutingSource identifies one event stream a rule listens to.
type RoutingSource struct {
	Kind       RoutingSourceKind
	Channel    uint8 // MIDI channel for CC/Note sources
	Controller uint8 // CC number for MidiCC sources
	CvChannel  int   // ADC channel index for CvInput sources
}

// RoutingTargetKind identifies which project parameter a rule writes.
type RoutingTargetKind int

const (
	RoutingTargetBpm RoutingTargetKind = iota
	RoutingTargetSwing
	RoutingTargetTrackMute
)

// RoutingTarget names the parameter a rule writes into, with TrackIndex
// meaningful only for per-track targets.
type RoutingTarget struct {
	Kind       RoutingTargetKind
	TrackIndex int
}

// RoutingRule maps one source to one target, linearly scaling the source's
// normalized [0,1] value into [Min, Max] (spec 4.4: "writes the mapped
// scalar into the addressed project parameter").
type RoutingRule struct {
	Enabled bool
	Source  RoutingSource
	Target  RoutingTarget
	Min     float32
	Max     float32
}

// MaxRoutingRules bounds the small, fixed-size routing table (spec 4.4:
// "a small array of source→target rules").
const MaxRoutingRules = 8

// RoutingTable is the project's fixed-size routing rule set.
type RoutingTable [MaxRoutingRules]RoutingRule
