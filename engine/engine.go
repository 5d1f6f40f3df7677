// Package engine is C8, the composition root: it owns every collaborator
// (clock, track engines, routing, output router, tempo, MIDI fan-in/out)
// and implements the top-level update loop and the lock protocol the UI
// thread uses to safely mutate the project model (spec 4.8).
package engine

import (
	"log/slog"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/jstefani/performer/engine/clock"
	"github.com/jstefani/performer/engine/playstate"
	"github.com/jstefani/performer/engine/route"
	"github.com/jstefani/performer/engine/routing"
	"github.com/jstefani/performer/engine/track"
	"github.com/jstefani/performer/internal/logging"
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
	"github.com/jstefani/performer/tempo"
)

// MessageHandler receives user-facing status text, mirroring the
// firmware's showMessage callback (spec section 6).
type MessageHandler func(text string, duration time.Duration)

// clockSinkAdapter lets midi.FanIn (which only knows about an int source
// index, to stay independent of the engine packages) drive a
// *clock.Clock, which types its slave sources as clock.SlaveSource.
type clockSinkAdapter struct{ clock *clock.Clock }

func (a clockSinkAdapter) SlaveHandleMidi(source int, b byte) {
	a.clock.SlaveHandleMidi(clock.SlaveSource(source), b)
}

// Engine is C8. Zero value is not usable; construct with New.
type Engine struct {
	project *model.Project

	clock   *clock.Clock
	tracks  *track.Container
	router  *route.Router
	routing *routing.Engine
	fanIn   *midi.FanIn
	fanOut  *midi.FanOut

	tapTempo   *tempo.TapTempo
	nudgeTempo *tempo.NudgeTempo

	outputs route.Outputs

	tick    uint32
	running bool

	requestLock   bool
	requestUnlock bool
	locked        bool

	pendingMidi []midi.Message
	cvInputs    [params.TrackCount]float32

	messageHandler     MessageHandler
	midiReceiveHandler midi.ReceiveHandler

	log *slog.Logger
}

// New constructs an Engine wired to project, with all track slots, the
// routing table, and the clock freshly initialized (spec 4.8's init()).
func New(project *model.Project) *Engine {
	e := &Engine{
		project:    project,
		clock:      clock.New(),
		tracks:     track.NewContainer(),
		tapTempo:   tempo.NewTapTempo(),
		nudgeTempo: tempo.NewNudgeTempo(),
		fanOut:     midi.NewFanOut(),
		log:        logging.Component("engine"),
	}
	e.router = route.New(e.tracks)
	e.routing = routing.New(project)

	e.fanIn = midi.NewFanIn(clockSinkAdapter{e.clock})
	e.fanIn.BindClockSource(midi.DIN, int(clock.SourceMidi))
	e.fanIn.BindClockSource(midi.USB, int(clock.SourceUsbMidi))
	e.fanIn.SetRoutingSink(e.routing.ReceiveMidi)
	for i := 0; i < params.TrackCount; i++ {
		e.fanIn.AddTrack(e.tracks.Get(i))
	}

	e.initClockOutputs()
	e.updateClockSetup()
	e.updateTrackSetups()
	e.tracks.ResetAll()

	return e
}

// initClockOutputs wires the clock's outbound MIDI callback, gated per
// clockSetup.midiTx/usbTx, mirroring Engine::initClockOutputs. Digital
// clock/reset/start-stop pins are bound separately by the platform layer
// via BindClockOutputs, since this module has no hardware collaborator of
// its own (spec section 1).
func (e *Engine) initClockOutputs() {
	e.clock.OutputMidi(func(b byte) {
		setup := &e.project.Clock
		if setup.MidiTx {
			e.fanOut.SendClockByte(b, func(p midi.Port) bool { return p == midi.DIN })
		}
		if setup.UsbTx {
			e.fanOut.SendClockByte(b, func(p midi.Port) bool { return p == midi.USB })
		}
	})
}

// BindClockOutputs installs the digital clock-pin callbacks a platform
// layer (hwsim, real GPIO) provides. See Clock.OutputClock for which
// callback fires on which edge.
func (e *Engine) BindClockOutputs(clockPin, resetPin, startStopPin func(bool)) {
	e.clock.OutputClock(clockPin, resetPin, startStopPin)
}

// BindMidiSender installs the sender used to transmit on a physical MIDI
// port (spec section 1: the transport itself is an out-of-scope
// collaborator; this module only multiplexes onto it).
func (e *Engine) BindMidiSender(port midi.Port, send midi.Sender) {
	e.fanOut.BindPort(port, send)
}

// updateClockSetup reconfigures the clock's slave sources and output
// divisor from the project's dirty-flagged ClockSetup (spec 4.1,
// Engine::updateClockSetup). The external gate source is always enabled,
// matching the firmware: it is the digital input pin, present regardless
// of any Rx toggle.
func (e *Engine) updateClockSetup() {
	setup := &e.project.Clock
	if !setup.IsDirty() {
		return
	}

	externalFlags := clock.SlaveEnabled
	if setup.ClockInputMode == model.ClockModeReset {
		externalFlags |= clock.SlaveFreeRunning
	}
	e.clock.SlaveConfigure(clock.SourceExternal, setup.ClockInputDivisor, externalFlags)

	var midiFlags clock.SlaveFlags
	if setup.MidiRx {
		midiFlags = clock.SlaveEnabled
	}
	e.clock.SlaveConfigure(clock.SourceMidi, params.PPQN/24, midiFlags)

	var usbFlags clock.SlaveFlags
	if setup.UsbRx {
		usbFlags = clock.SlaveEnabled
	}
	e.clock.SlaveConfigure(clock.SourceUsbMidi, params.PPQN/24, usbFlags)

	e.clock.OutputConfigure(setup.ClockOutputDivisor, setup.ClockOutputPulse)

	setup.ClearDirty()
	e.log.Debug("clock setup reconfigured", "midiRx", setup.MidiRx, "usbRx", setup.UsbRx)
}

// updateTrackSetups rebuilds any track slot whose mode changed and keeps
// swing current on every slot (spec 4.8 step (f), Engine::updateTrackSetups).
func (e *Engine) updateTrackSetups() {
	for i := 0; i < params.TrackCount; i++ {
		cfg := e.project.Tracks[i]
		if e.tracks.NeedsRebuild(i, cfg) {
			e.tracks.Rebuild(i, cfg)
			ts := &e.project.PlayState.Tracks[i]
			eng := e.tracks.Get(i)
			eng.SetMute(ts.Mute)
			eng.SetFill(ts.Fill)
			eng.SetPattern(ts.Pattern)
			e.log.Debug("track rebuilt", "track", i, "mode", cfg.TrackMode)
		}
		e.tracks.Get(i).SetSwing(e.project.Swing)
	}
}

// GateInputEdge feeds a digital clock-input edge into the clock, matching
// the firmware's _dio.clockInput ISR handler (spec 4.1's slaveTick). The
// byte-ring/ISR plumbing itself is out of scope; simulator and hardware
// glue call this directly.
func (e *Engine) GateInputEdge() {
	e.clock.SlaveTick(clock.SourceExternal)
}

// GateResetInputEdge feeds the digital reset/start-stop input pin,
// dispatching to reset or start/stop depending on ClockInputMode
// (grounded on Engine::initClockSources's resetInput handler).
func (e *Engine) GateResetInputEdge(value bool) {
	switch e.project.Clock.ClockInputMode {
	case model.ClockModeReset:
		if value {
			e.clock.SlaveReset(clock.SourceExternal)
		}
	case model.ClockModeStartStop:
		if value {
			e.clock.SlaveStart(clock.SourceExternal)
		} else {
			e.clock.SlaveStop(clock.SourceExternal)
		}
	}
}

// ReceiveRealtimeByte offers one inbound MIDI byte to the clock-byte
// filter. Full message parsing is an out-of-scope collaborator (spec
// section 1); only real-time bytes are handled at this layer.
func (e *Engine) ReceiveRealtimeByte(port midi.Port, b byte) bool {
	return e.fanIn.FilterByte(port, b)
}

// ReceiveMessage enqueues one already-assembled, non-clock MIDI message
// for dispatch on the next update() pass, standing in for the firmware's
// SPSC byte ring (spec section 5). The ring is fixed-size; once full, new
// messages are dropped and reported rather than grown.
func (e *Engine) ReceiveMessage(msg midi.Message) {
	if len(e.pendingMidi) >= params.MaxPendingMidi {
		err := &model.BufferOverflow{Buffer: "pendingMidi", Capacity: params.MaxPendingMidi}
		e.log.Warn("dropping inbound MIDI message", "error", err)
		e.ShowMessage(err.Error(), 2*time.Second)
		return
	}
	e.pendingMidi = append(e.pendingMidi, msg)
}

// SendMidi dispatches an outbound message through the fan-out (spec 4.6).
func (e *Engine) SendMidi(port midi.Port, raw gomidi.Message) error {
	return e.fanOut.Send(port, raw)
}

// SetCvInput stashes one ADC channel reading for the next update() pass's
// routing sweep.
func (e *Engine) SetCvInput(channel int, value float32) {
	if channel < 0 || channel >= params.TrackCount {
		return
	}
	e.cvInputs[channel] = value
}

// Update runs one pass of the engine loop, advancing the clock by dt
// seconds and draining whatever ticks it produced (spec 4.8).
func (e *Engine) Update(dt float64) {
	if e.requestLock {
		e.requestLock = false
		e.locked = true
	}
	if e.requestUnlock {
		e.requestUnlock = false
		e.locked = false
	}

	e.clock.Advance(dt)

	if e.locked {
		var tick uint32
		for e.clock.CheckTick(&tick) {
		}
		e.pendingMidi = e.pendingMidi[:0]
		e.routeOutputs()
		return
	}

	if e.clock.CheckStart() {
		e.tracks.ResetAll()
		e.running = true
		e.log.Debug("transport started")
	}
	if e.clock.CheckStop() {
		e.running = false
		e.log.Debug("transport stopped")
	}
	if e.clock.CheckResume() {
		e.running = true
	}

	e.receiveMidi()

	e.nudgeTempo.Update(dt)
	e.tapTempo.Advance(dt)
	e.clock.SetMasterBpm(e.project.Bpm + e.nudgeTempo.Offset())

	e.updateClockSetup()
	e.updateTrackSetups()

	playstate.Evaluate(&e.project.PlayState, e.tick, e.project.SyncMeasure)
	e.pushPlayStateToTracks()

	e.routing.UpdateCvInputs(e.cvInputs[:])

	var tick uint32
	drained := false
	for e.clock.CheckTick(&tick) {
		e.tick = tick
		playstate.Evaluate(&e.project.PlayState, e.tick, e.project.SyncMeasure)
		e.pushPlayStateToTracks()
		e.tracks.TickAll(tick)
		e.routeOutputs()
		drained = true
	}
	if !drained {
		e.routeOutputs()
	}

	e.tracks.UpdateAll(dt)
}

// pushPlayStateToTracks copies each track's committed (mute, fill,
// pattern) into its live engine, matching the tail of
// Engine::updatePlayState's per-track loop.
func (e *Engine) pushPlayStateToTracks() {
	for i := 0; i < params.TrackCount; i++ {
		ts := &e.project.PlayState.Tracks[i]
		eng := e.tracks.Get(i)
		eng.SetMute(ts.Mute)
		eng.SetFill(ts.Fill)
		eng.SetPattern(ts.Pattern)
	}
}

// routeOutputs runs one pass of C5. Router.Route already emits override
// values and skips per-track routing for an overridden domain, matching
// spec 4.5's own description of C5, so no separate override-apply step is
// needed here.
func (e *Engine) routeOutputs() {
	e.router.Route(e.project, e.project.SelectedTrackIndex, e.clock.IsIdle(), &e.outputs)
}

func (e *Engine) receiveMidi() {
	for _, msg := range e.pendingMidi {
		e.fanIn.Dispatch(msg)
	}
	e.pendingMidi = e.pendingMidi[:0]
}

// Lock drives Update with dt=0 until the engine has acknowledged the lock
// request, the pattern PLATFORM_SIM's lock()/unlock() use in a
// single-threaded harness (spec 4.8).
func (e *Engine) Lock() {
	for !e.IsLocked() {
		e.requestLock = true
		e.Update(0)
	}
}

// Unlock is Lock's counterpart.
func (e *Engine) Unlock() {
	for e.IsLocked() {
		e.requestUnlock = true
		e.Update(0)
	}
}

func (e *Engine) IsLocked() bool { return e.locked }

func (e *Engine) Start() {
	e.clock.MasterStart()
	e.tick = 0
}

func (e *Engine) Stop()   { e.clock.MasterStop() }
func (e *Engine) Resume() { e.clock.MasterResume() }

func (e *Engine) TapTempoReset() { e.tapTempo.Reset() }

func (e *Engine) TapTempoTap() {
	if bpm, ok := e.tapTempo.Tap(); ok {
		e.project.Bpm = bpm
	}
}

func (e *Engine) NudgeTempoSetDirection(direction int) { e.nudgeTempo.SetDirection(direction) }
func (e *Engine) NudgeTempoStrength() float64          { return e.nudgeTempo.Strength() }

// SyncMeasureFraction returns (tick mod M)/M (spec section 6).
func (e *Engine) SyncMeasureFraction() float64 {
	return playstate.Fraction(e.tick, e.project.SyncMeasure)
}

func (e *Engine) ShowMessage(text string, duration time.Duration) {
	if e.messageHandler != nil {
		e.messageHandler(text, duration)
	}
}

func (e *Engine) SetMessageHandler(h MessageHandler) { e.messageHandler = h }

func (e *Engine) SetMidiReceiveHandler(h midi.ReceiveHandler) {
	e.midiReceiveHandler = h
	e.fanIn.SetReceiveHandler(h)
}

func (e *Engine) SetGateOutputOverride(active bool, values [params.TrackCount]bool) {
	e.router.GateOverride = route.GateOverride{Active: active, Values: values}
}

func (e *Engine) SetCvOutputOverride(active bool, values [params.TrackCount]float32) {
	e.router.CvOverride = route.CvOverride{Active: active, Values: values}
}

// Outputs returns the last-computed physical output snapshot.
func (e *Engine) Outputs() route.Outputs { return e.outputs }

// Tick returns the engine's current authoritative tick (for tests/UI).
func (e *Engine) Tick() uint32 { return e.tick }

// IsRunning reports transport state.
func (e *Engine) IsRunning() bool { return e.running }
