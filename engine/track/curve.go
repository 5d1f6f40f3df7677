package track

import (
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

// CurveShape selects how a CurveStep interpolates across its step window.
type CurveShape int

const (
	CurveHold CurveShape = iota
	CurveRamp
	CurveTriangle
)

// CurveStep is one step of a Curve pattern: a shape and target value
// (roughly volts, -5..+5 range is a hardware convention this engine does
// not enforce).
type CurveStep struct {
	Shape CurveShape
	Value float32
}

// CurveTrackEngine outputs a single continuously-varying CV channel plus a
// short trigger pulse at the start of each step (spec 4.2).
type CurveTrackEngine struct {
	baseEngine

	Patterns [params.PatternCount][params.StepCount]CurveStep

	cv   float32
	gate bool

	idleCv float32
}

func NewCurveTrackEngine() *CurveTrackEngine {
	return &CurveTrackEngine{baseEngine: baseEngine{linkTrack: model.NoLink, idleShown: true}}
}

func (e *CurveTrackEngine) Reset() {
	e.cv = 0
	e.gate = false
}

func (e *CurveTrackEngine) Tick(globalTick uint32) {
	measureTicks := stepTicks * uint32(params.StepCount)
	pos := globalTick % measureTicks
	step := int(pos / stepTicks)
	phase := float64(pos%stepTicks) / float64(stepTicks)

	cur := e.Patterns[e.pattern][step]
	next := e.Patterns[e.pattern][(step+1)%params.StepCount]

	var v float32
	switch cur.Shape {
	case CurveRamp:
		v = cur.Value + float32(phase)*(next.Value-cur.Value)
	case CurveTriangle:
		if phase < 0.5 {
			v = cur.Value + float32(phase*2)*(next.Value-cur.Value)
		} else {
			v = next.Value - float32((phase-0.5)*2)*(next.Value-cur.Value)
		}
	default: // CurveHold
		v = cur.Value
	}

	if e.mute {
		v = 0
	}
	e.cv = v
	e.idleCv = cur.Value
	e.gate = !e.mute && pos%stepTicks < stepTicks/8 // short trigger pulse per step
}

func (e *CurveTrackEngine) Update(dt float64) {}

func (e *CurveTrackEngine) ReceiveMidi(port midi.Port, channel uint8, msg midi.Message) {}

func (e *CurveTrackEngine) GateOutput(subIndex int) bool    { return e.gate }
func (e *CurveTrackEngine) CvOutput(subIndex int) float32   { return e.cv }
func (e *CurveTrackEngine) IdleGateOutput(subIndex int) bool  { return false }
func (e *CurveTrackEngine) IdleCvOutput(subIndex int) float32 { return e.idleCv }
func (e *CurveTrackEngine) IdleOutput() bool                  { return e.idleShown }

func (e *CurveTrackEngine) TrackMode() model.TrackMode { return model.TrackModeCurve }
func (e *CurveTrackEngine) ChannelCount() int          { return 1 }

func (e *CurveTrackEngine) SetLinkTrack(link int) { e.linkTrack = link }
