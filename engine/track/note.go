package track

import (
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

// Step is one step of a Note pattern: whether it fires, which note it
// plays, and how long the gate stays high, in ticks.
type Step struct {
	Active   bool
	Note     uint8
	GateTicks uint32
}

// stepTicks is the tick length of one sixteenth-note step: a measure of
// params.StepCount steps spans exactly one 4/4 bar (params.PPQN*4 ticks).
const stepTicks = uint32(params.PPQN) / 4

// NoteTrackEngine is a single-channel gate+CV step sequencer (spec 4.2).
type NoteTrackEngine struct {
	baseEngine

	Patterns [params.PatternCount][params.StepCount]Step

	currentStep int
	gate        bool
	cv          float32

	idleGate bool
	idleCv   float32
}

// NewNoteTrackEngine returns an engine with a classic four-on-the-floor
// default pattern in slot 0 (steps 0, 4, 8, 12), matching the acceptance
// scenario's 4/4 kick at ticks {0, 192, 384, 576}.
func NewNoteTrackEngine() *NoteTrackEngine {
	e := &NoteTrackEngine{baseEngine: baseEngine{linkTrack: model.NoLink, idleShown: true}}
	for _, i := range []int{0, 4, 8, 12} {
		e.Patterns[0][i] = Step{Active: true, Note: 60, GateTicks: stepTicks / 2}
	}
	return e
}

func (e *NoteTrackEngine) Reset() {
	e.currentStep = 0
	e.gate = false
	e.cv = 0
}

// swingShift returns the tick offset applied to odd-indexed steps, a
// fraction of one step's length proportional to the swing percentage.
func (e *NoteTrackEngine) swingShift() uint32 {
	if e.swing <= 0 {
		return 0
	}
	pct := e.swing
	if pct > 100 {
		pct = 100
	}
	return stepTicks / 2 * uint32(pct) / 100
}

func (e *NoteTrackEngine) trigger(step int) uint32 {
	t := uint32(step) * stepTicks
	if step%2 == 1 {
		t += e.swingShift()
	}
	return t
}

func (e *NoteTrackEngine) Tick(globalTick uint32) {
	measureTicks := stepTicks * uint32(params.StepCount)
	pos := globalTick % measureTicks

	current := 0
	for i := params.StepCount - 1; i >= 0; i-- {
		if pos >= e.trigger(i) {
			current = i
			break
		}
	}

	pattern := &e.Patterns[e.pattern]
	step := pattern[current]
	elapsed := pos - e.trigger(current)

	e.currentStep = current
	e.gate = step.Active && !e.mute && elapsed < step.GateTicks
	if step.Active {
		e.cv = noteToCv(step.Note)
	}

	e.idleGate = step.Active && !e.mute
	e.idleCv = noteToCv(step.Note)
}

// noteToCv converts a MIDI note to a 1V/octave control voltage referenced
// to middle C (note 60).
func noteToCv(note uint8) float32 {
	return float32(int(note)-60) / 12.0
}

func (e *NoteTrackEngine) Update(dt float64) {}

func (e *NoteTrackEngine) ReceiveMidi(port midi.Port, channel uint8, msg midi.Message) {}

func (e *NoteTrackEngine) GateOutput(subIndex int) bool    { return e.gate }
func (e *NoteTrackEngine) CvOutput(subIndex int) float32   { return e.cv }
func (e *NoteTrackEngine) IdleGateOutput(subIndex int) bool  { return e.idleGate }
func (e *NoteTrackEngine) IdleCvOutput(subIndex int) float32 { return e.idleCv }
func (e *NoteTrackEngine) IdleOutput() bool                  { return e.idleShown }

func (e *NoteTrackEngine) TrackMode() model.TrackMode { return model.TrackModeNote }
func (e *NoteTrackEngine) ChannelCount() int          { return 1 }

// SetLinkTrack is not part of the Engine interface (link validation lives
// in model.Project.SetLinkTrack); the container calls this when rebuilding
// a slot from TrackConfig.
func (e *NoteTrackEngine) SetLinkTrack(link int) { e.linkTrack = link }
