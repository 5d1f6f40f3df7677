package midi

import "github.com/jstefani/performer/internal/logging"

// ClockSink is the subset of clock.Clock the receive filter talks to. Kept
// as a local interface (rather than importing engine/clock) so midi has no
// dependency on the engine packages — only engine wires the two together.
type ClockSink interface {
	SlaveHandleMidi(source int, b byte)
}

// LearnSink is the MIDI-learn consumer every message is offered to before
// routing and track dispatch (spec section 4.6). The UI-side decision of
// what a learned mapping means is out of scope here; Learn only reports
// whether it consumed the message for learning purposes.
type LearnSink interface {
	Armed() bool
	Learn(port Port, channel uint8, msg Message) bool
}

// TrackSink receives every complete message after learn/routing, demuxed by
// channel, the way every live track engine does in C8's receiveMidi.
type TrackSink interface {
	ReceiveMidi(port Port, channel uint8, msg Message)
}

// ReceiveHandler is the optional user-installed hook fired after learn and
// routing, before track dispatch.
type ReceiveHandler func(port Port, msg Message)

// FanIn implements the receive side of C6: each byte is offered to the
// clock-byte filter first; bytes it doesn't claim assemble into complete
// messages (assembly itself happens in the SPSC byte ring / port driver,
// which is out of scope — FanIn's Dispatch takes already-assembled
// messages) and are fanned out to learn, routing, the optional handler, and
// every track engine in that order.
type FanIn struct {
	clockSources map[Port]int // which clock slave source a port's clock bytes feed

	learn   LearnSink
	routing func(port Port, msg Message)
	handler ReceiveHandler
	tracks  []TrackSink

	clock ClockSink

	// songPosRemaining counts the trailing data bytes of an in-flight 0xF2
	// song-position-pointer that must also be diverted to the clock, even
	// though their values don't match any clock status byte. The
	// underlying 3-byte message is otherwise invisible to a byte-at-a-time
	// filter; see DESIGN.md for why assembly is split this way.
	songPosRemaining map[Port]int
}

// NewFanIn wires a FanIn to the clock it diverts real-time bytes to.
func NewFanIn(clock ClockSink) *FanIn {
	return &FanIn{
		clockSources:     make(map[Port]int),
		songPosRemaining: make(map[Port]int),
		clock:            clock,
	}
}

// BindClockSource associates a port with the clock's slave-source index, so
// FilterByte knows which source to hand diverted bytes to.
func (f *FanIn) BindClockSource(port Port, source int) {
	f.clockSources[port] = source
}

// SetLearnSink installs the MIDI-learn consumer.
func (f *FanIn) SetLearnSink(l LearnSink) { f.learn = l }

// SetRoutingSink installs the routing engine's receive hook.
func (f *FanIn) SetRoutingSink(r func(port Port, msg Message)) { f.routing = r }

// SetReceiveHandler installs the optional user handler.
func (f *FanIn) SetReceiveHandler(h ReceiveHandler) { f.handler = h }

// AddTrack registers a track engine as a dispatch target. Order matches
// track index order, as spec.md requires for deterministic MIDI-learn and
// routing precedence.
func (f *FanIn) AddTrack(t TrackSink) { f.tracks = append(f.tracks, t) }

// FilterByte offers one inbound byte to the clock-byte filter. It returns
// true if the byte was a real-time clock byte and has been consumed by the
// clock — callers must not forward a consumed byte to message assembly.
// This is the only allocation-free, inlineable-by-convention hot path in
// the package (spec Design Note 9.2).
func (f *FanIn) FilterByte(port Port, b byte) bool {
	if f.songPosRemaining[port] > 0 {
		f.songPosRemaining[port]--
		f.divertToClock(port, b)
		return true
	}
	if !IsClockByte(b) {
		return false
	}
	if b == ByteSongPos {
		f.songPosRemaining[port] = 2
	}
	f.divertToClock(port, b)
	return true
}

func (f *FanIn) divertToClock(port Port, b byte) {
	if source, ok := f.clockSources[port]; ok && f.clock != nil {
		f.clock.SlaveHandleMidi(source, b)
	}
}

// Dispatch fans one complete, non-clock message out to learn, routing, the
// optional handler, and every track engine, in that order (spec 4.6).
func (f *FanIn) Dispatch(msg Message) {
	if f.learn != nil && f.learn.Armed() {
		if f.learn.Learn(msg.Port, msg.Channel, msg) {
			logging.EngineLogger().Debug("midi learn consumed message", "port", msg.Port)
			return
		}
	}
	if f.routing != nil {
		f.routing(msg.Port, msg)
	}
	if f.handler != nil {
		f.handler(msg.Port, msg)
	}
	for _, t := range f.tracks {
		t.ReceiveMidi(msg.Port, msg.Channel, msg)
	}
}
