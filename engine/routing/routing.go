// Package routing implements C4, the routing engine: it maps inbound MIDI
// CC/note events and ADC-sourced CV inputs through the project's fixed
// routing table into writes on project parameters (tempo, swing, per-track
// mute). Routing targets are purely additive — there is no cross-route
// invariant to enforce (spec 4.4).
package routing

import (
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
)

// Engine applies model.RoutingRule entries against live MIDI and CV
// events, writing directly into the project it was given.
type Engine struct {
	project *model.Project
}

// New wires a routing Engine to the project it writes into.
func New(project *model.Project) *Engine {
	return &Engine{project: project}
}

// Armed always reports false: MIDI-learn is a UI-side concern (spec
// section 1's "the UI layer" exclusion) that this package does not
// implement; routing.Engine only consumes the table the UI produces.
func (e *Engine) Armed() bool { return false }

// ReceiveMidi matches midi.FanIn's routing-sink hook signature and applies
// any CC/note routing rules that match the message.
func (e *Engine) ReceiveMidi(port midi.Port, msg midi.Message) {
	var ch, controller, value uint8
	if msg.Raw.GetControlChange(&ch, &controller, &value) {
		e.applyMidiCC(ch, controller, value)
		return
	}
	var key, vel uint8
	if msg.Raw.GetNoteOn(&ch, &key, &vel) {
		e.applyMidiNote(ch, key, vel)
	}
}

func (e *Engine) applyMidiCC(channel, controller, value uint8) {
	for i := range e.project.Routings {
		r := &e.project.Routings[i]
		if !r.Enabled || r.Source.Kind != model.RoutingSourceMidiCC {
			continue
		}
		if r.Source.Channel != channel || r.Source.Controller != controller {
			continue
		}
		e.write(r, float32(value)/127.0)
	}
}

func (e *Engine) applyMidiNote(channel, key, velocity uint8) {
	for i := range e.project.Routings {
		r := &e.project.Routings[i]
		if !r.Enabled || r.Source.Kind != model.RoutingSourceMidiNote {
			continue
		}
		if r.Source.Channel != channel {
			continue
		}
		e.write(r, float32(velocity)/127.0)
	}
}

// UpdateCvInputs applies CV-input routing rules from a snapshot of ADC
// channel readings, each normalized to [0, 1] (spec 4.4: "CV inputs flow
// ADC → C4 → model parameter updates").
func (e *Engine) UpdateCvInputs(channels []float32) {
	for i := range e.project.Routings {
		r := &e.project.Routings[i]
		if !r.Enabled || r.Source.Kind != model.RoutingSourceCvInput {
			continue
		}
		if r.Source.CvChannel < 0 || r.Source.CvChannel >= len(channels) {
			continue
		}
		e.write(r, channels[r.Source.CvChannel])
	}
}

// write scales a normalized [0,1] source value into the rule's [Min, Max]
// range and applies it to the addressed target.
func (e *Engine) write(r *model.RoutingRule, normalized float32) {
	value := r.Min + normalized*(r.Max-r.Min)
	switch r.Target.Kind {
	case model.RoutingTargetBpm:
		e.project.Bpm = float64(value)
	case model.RoutingTargetSwing:
		e.project.Swing = int(value)
	case model.RoutingTargetTrackMute:
		if r.Target.TrackIndex >= 0 && r.Target.TrackIndex < len(e.project.PlayState.Tracks) {
			e.project.PlayState.Tracks[r.Target.TrackIndex].RequestMute(value != 0, model.RequestImmediate)
		}
	}
}
