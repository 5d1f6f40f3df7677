// Package clock implements C1: the clock-source multiplexer and tick
// dispatcher. It multiplexes an internal free-running master timer with
// external-gate and MIDI-derived slave sources into a single monotonic
// 24-bit tick counter at params.PPQN resolution, and drives the digital
// clock/reset outputs and outbound MIDI real-time bytes.
package clock

import "github.com/jstefani/performer/params"

// SlaveSource identifies where a slave clock edge originates.
type SlaveSource int

const (
	SourceExternal SlaveSource = iota
	SourceMidi
	SourceUsbMidi
	sourceCount
)

// SlaveFlags configures a slave source (spec 4.1).
type SlaveFlags int

const (
	SlaveEnabled     SlaveFlags = 1 << 0
	SlaveFreeRunning SlaveFlags = 1 << 1
)

// TickMask keeps the tick counter to the 24-bit range the data model
// specifies; wraparound beyond that is not exercised by any test.
const TickMask = 0xFFFFFF

const (
	midiClockDivisor = params.PPQN / 24 // engine ticks per received 0xF8
)

// Real-time MIDI byte values C1 consumes directly, duplicated from the midi
// package's constants (this package must not import midi, to keep the
// dependency graph a DAG — engine wires the two together).
const (
	byteClock    byte = 0xF8
	byteStart    byte = 0xFA
	byteContinue byte = 0xFB
	byteStop     byte = 0xFC
	byteSongPos  byte = 0xF2
)

type slaveState struct {
	enabled     bool
	divisor     int
	freeRunning bool
}

// Clock is the C1 tick source. All fields are pre-allocated; there is no
// dynamic allocation on the hot path.
type Clock struct {
	running  bool
	masterBpm float64
	tick      uint32
	delivered uint32

	slaves      [sourceCount]slaveState
	activeSource int // -1 = no slave session in progress, master mode

	phase float64 // master-timer fractional tick accumulator
	elapsed float64

	slaveHasEdge     bool
	slaveLastEdgeAt  float64
	slaveEdgeInterval float64
	slaveTarget      uint32
	slaveSubPhase    float64

	pendingStart  bool
	pendingStop   bool
	pendingResume bool

	outMidi       func(byte)
	outClock      func(bool)
	outReset      func(bool)
	outStartStop  func(bool)

	outputDivisor int
	outputPulseMs int
	clockBoundaryCount uint32
	clockPulseRemaining float64
	resetPulseRemaining float64

	songPosState byte // 0 = idle, 1 = have status, 2 = have lsb
	songPosLSB   byte
}

// New creates a Clock in the stopped state, master mode, 120 BPM, 1:1
// output divisor, no slaves enabled.
func New() *Clock {
	c := &Clock{
		masterBpm:     120,
		activeSource:  -1,
		outputDivisor: 1,
		outputPulseMs: 5,
	}
	return c
}

// MasterStart resets the tick counter to 0 and begins running in master
// mode (invariant 2).
func (c *Clock) MasterStart() {
	c.tick = 0
	c.delivered = 0
	c.phase = 0
	c.running = true
	c.activeSource = -1
	c.resetSlaveEdge()
	c.pendingStart = true
	c.emitMidi(byteStart)
	c.triggerReset()
}

// MasterStop halts tick generation without resetting the counter.
func (c *Clock) MasterStop() {
	c.running = false
	c.pendingStop = true
	c.emitMidi(byteStop)
}

// MasterResume continues from the current tick (invariant 2: tick does not
// reset on resume).
func (c *Clock) MasterResume() {
	c.running = true
	c.pendingResume = true
	c.emitMidi(byteContinue)
}

// SlaveConfigure sets a slave source's divisor and enable/free-running
// flags (spec 4.1).
func (c *Clock) SlaveConfigure(source SlaveSource, divisor int, flags SlaveFlags) {
	if divisor < 1 {
		divisor = 1
	}
	s := &c.slaves[source]
	s.divisor = divisor
	s.enabled = flags&SlaveEnabled != 0
	s.freeRunning = flags&SlaveFreeRunning != 0
	if !s.enabled && c.activeSource == int(source) {
		c.activeSource = -1
		c.resetSlaveEdge()
	}
}

// anyEnabledSlave reports whether the clock should be in slave mode.
func (c *Clock) anyEnabledSlave() bool {
	for i := range c.slaves {
		if c.slaves[i].enabled {
			return true
		}
	}
	return false
}

// acquireSession implements "first edge after a start wins the session"
// (spec 4.1): the first enabled source to emit an edge becomes the
// authority until the next start/reset clears activeSource.
func (c *Clock) acquireSession(source SlaveSource) bool {
	if !c.slaves[source].enabled {
		return false
	}
	if c.activeSource == -1 {
		c.activeSource = int(source)
	}
	return c.activeSource == int(source)
}

// SlaveTick is an edge from the external gate input (spec 4.1).
func (c *Clock) SlaveTick(source SlaveSource) {
	if !c.acquireSession(source) || !c.running {
		return
	}
	c.advanceSlaveEdge(uint32(c.slaves[source].divisor))
}

// SlaveStart resets the tick counter and starts running under the given
// source's authority.
func (c *Clock) SlaveStart(source SlaveSource) {
	if !c.slaves[source].enabled {
		return
	}
	c.activeSource = int(source)
	c.tick = 0
	c.delivered = 0
	c.resetSlaveEdge()
	c.running = true
	c.pendingStart = true
	c.emitMidi(byteStart)
	c.triggerReset()
}

// SlaveStop halts the clock if source currently holds the session.
func (c *Clock) SlaveStop(source SlaveSource) {
	if c.activeSource != int(source) {
		return
	}
	c.running = false
	c.pendingStop = true
	c.emitMidi(byteStop)
}

// SlaveReset applies a reset edge. While running in FreeRunning mode the
// tick resets but running stays true (invariant 2); otherwise the tick is
// zeroed, the running state is left as it was, and source takes the session.
func (c *Clock) SlaveReset(source SlaveSource) {
	s := &c.slaves[source]
	if !s.enabled {
		return
	}
	c.tick = 0
	c.delivered = 0
	c.resetSlaveEdge()
	if s.freeRunning && c.running {
		// running stays true; only the counter resets.
		c.triggerReset()
		return
	}
	c.activeSource = int(source)
	c.triggerReset()
}

// SlaveHandleMidi processes one inbound MIDI real-time byte (spec 4.1). The
// three-byte song-position-pointer sequence is assembled across successive
// calls since the receive filter hands bytes one at a time; see DESIGN.md
// for why that assembly lives here rather than in the midi package.
func (c *Clock) SlaveHandleMidi(source SlaveSource, b byte) {
	switch c.songPosState {
	case 1:
		c.songPosLSB = b
		c.songPosState = 2
		return
	case 2:
		c.seekSongPosition(c.songPosLSB, b)
		c.songPosState = 0
		return
	}

	switch b {
	case byteClock:
		if c.acquireSession(source) && c.running {
			c.advanceSlaveEdge(uint32(c.slaves[source].divisor))
		}
	case byteStart:
		c.SlaveStart(source)
	case byteContinue:
		if !c.slaves[source].enabled {
			return
		}
		c.activeSource = int(source)
		c.running = true
		c.pendingResume = true
		c.emitMidi(byteContinue)
	case byteStop:
		c.SlaveStop(source)
	case byteSongPos:
		c.songPosState = 1
	}
}

// seekSongPosition implements the supplemented feature from Design Note 12:
// a song-position pointer received seeks the tick counter without starting
// playback. value counts MIDI-beats (sixteenth notes); each is 6 MIDI clock
// messages, i.e. 6*PPQN/24 engine ticks.
func (c *Clock) seekSongPosition(lsb, msb byte) {
	value := uint32(msb)<<7 | uint32(lsb)
	c.tick = value * 6 * uint32(midiClockDivisor)
	c.delivered = c.tick
}

func (c *Clock) resetSlaveEdge() {
	c.slaveHasEdge = false
	c.slaveEdgeInterval = 0
	c.slaveTarget = c.tick
	c.slaveSubPhase = 0
}

func (c *Clock) advanceSlaveEdge(ticksPerEdge uint32) {
	now := c.elapsed
	if c.slaveHasEdge {
		if interval := now - c.slaveLastEdgeAt; interval > 0 {
			c.slaveEdgeInterval = interval
		}
	} else {
		c.slaveHasEdge = true
	}
	c.slaveLastEdgeAt = now
	if c.slaveTarget < c.tick {
		c.slaveTarget = c.tick
	}
	c.slaveTarget += ticksPerEdge
}

// SetMasterBpm updates the internal free-running timer's rate. It has no
// effect while a slave source holds the session.
func (c *Clock) SetMasterBpm(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.masterBpm = bpm
}

// Advance steps the clock by dt seconds of wall-clock time. It is the only
// entry point that generates new ticks; the orchestrator calls it once per
// update() pass with the measured frame delta.
func (c *Clock) Advance(dt float64) {
	c.elapsed += dt
	c.stepOutputPulses(dt)
	if !c.running {
		return
	}

	if c.activeSource == -1 || !c.anyEnabledSlave() {
		c.phase += dt * c.masterBpm * float64(params.PPQN) / 60.0
		for c.phase >= 1.0 {
			c.phase -= 1.0
			c.onTickAdvanced()
		}
		return
	}

	if c.tick >= c.slaveTarget {
		return
	}
	if c.slaveEdgeInterval <= 0 {
		// No interval between edges measured yet: emit the edge's ticks at once.
		for n := c.slaveTarget - c.tick; n > 0; n-- {
			c.onTickAdvanced()
		}
		return
	}
	rate := float64(c.slaveTarget-c.tick) / c.slaveEdgeInterval
	c.slaveSubPhase += dt * rate
	for c.slaveSubPhase >= 1.0 && c.tick < c.slaveTarget {
		c.slaveSubPhase -= 1.0
		c.onTickAdvanced()
	}
}

// onTickAdvanced increments the tick counter and fires the MIDI-clock and
// digital clock-pin outputs at the 24ppq / outputDivisor cadence.
func (c *Clock) onTickAdvanced() {
	c.tick = (c.tick + 1) & TickMask
	if c.tick%uint32(midiClockDivisor) != 0 {
		return
	}
	c.emitMidi(byteClock)

	c.clockBoundaryCount++
	if c.outputDivisor > 0 && c.clockBoundaryCount%uint32(c.outputDivisor) == 0 {
		c.triggerClockPulse()
	}
}

func (c *Clock) emitMidi(b byte) {
	if c.outMidi != nil {
		c.outMidi(b)
	}
}

func (c *Clock) triggerClockPulse() {
	if c.outClock != nil {
		c.outClock(true)
	}
	c.clockPulseRemaining = float64(c.outputPulseMs) / 1000.0
}

func (c *Clock) triggerReset() {
	if c.outReset != nil {
		c.outReset(true)
	}
	c.resetPulseRemaining = float64(c.outputPulseMs) / 1000.0
	if c.outStartStop != nil {
		c.outStartStop(c.running)
	}
}

func (c *Clock) stepOutputPulses(dt float64) {
	if c.clockPulseRemaining > 0 {
		c.clockPulseRemaining -= dt
		if c.clockPulseRemaining <= 0 {
			c.clockPulseRemaining = 0
			if c.outClock != nil {
				c.outClock(false)
			}
		}
	}
	if c.resetPulseRemaining > 0 {
		c.resetPulseRemaining -= dt
		if c.resetPulseRemaining <= 0 {
			c.resetPulseRemaining = 0
			if c.outReset != nil {
				c.outReset(false)
			}
		}
	}
}

// OutputConfigure sets the digital clock output's divisor (relative to
// 24ppq) and pulse width in milliseconds.
func (c *Clock) OutputConfigure(divisor, pulseMs int) {
	if divisor < 1 {
		divisor = 1
	}
	if pulseMs < 1 {
		pulseMs = 1
	}
	c.outputDivisor = divisor
	c.outputPulseMs = pulseMs
}

// OutputMidi installs the sink for outbound MIDI real-time bytes.
func (c *Clock) OutputMidi(cb func(byte)) { c.outMidi = cb }

// OutputClock installs the digital clock/reset/start-stop pin sinks. Which
// of cbReset/cbStartStop actually drives the physical reset pin is decided
// by the installer based on clockOutputMode (spec 4.1, Engine.cpp
// initClockOutputs) — Clock calls both unconditionally.
func (c *Clock) OutputClock(cbClock, cbReset, cbStartStop func(bool)) {
	c.outClock = cbClock
	c.outReset = cbReset
	c.outStartStop = cbStartStop
}

// CheckStart, CheckStop, CheckResume are one-shot edge flags consumed by
// C8 once per update pass.
func (c *Clock) CheckStart() bool  { v := c.pendingStart; c.pendingStart = false; return v }
func (c *Clock) CheckStop() bool   { v := c.pendingStop; c.pendingStop = false; return v }
func (c *Clock) CheckResume() bool { v := c.pendingResume; c.pendingResume = false; return v }

// CheckTick returns the next undelivered tick, if the engine is behind.
// Callers MUST loop until this returns false to drain every pending tick
// in a pass (spec 4.1).
func (c *Clock) CheckTick(out *uint32) bool {
	if c.delivered >= c.tick {
		return false
	}
	c.delivered++
	*out = c.delivered
	return true
}

// IsIdle reports whether the transport is stopped.
func (c *Clock) IsIdle() bool { return !c.running }

// IsRunning reports whether the transport is running.
func (c *Clock) IsRunning() bool { return c.running }

// Tick returns the current authoritative tick value (for syncMeasureFraction
// and tests; not part of the drain protocol).
func (c *Clock) Tick() uint32 { return c.tick }
