package track

import (
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
)

// midiCvVoices is k, the number of gate+CV voice pairs a MidiCv engine
// drives (spec 4.2: "MidiCv emits several CV channels").
const midiCvVoices = 4

type voice struct {
	active bool
	note   uint8
}

// MidiCvTrackEngine turns incoming MIDI note on/off into up to
// midiCvVoices independent gate+CV channels. It never links to another
// track's timing (spec section 3: "MidiCv tracks do not link").
type MidiCvTrackEngine struct {
	baseEngine

	channel uint8 // which MIDI channel this engine listens on, 0 = any
	voices  [midiCvVoices]voice
}

func NewMidiCvTrackEngine() *MidiCvTrackEngine {
	return &MidiCvTrackEngine{baseEngine: baseEngine{linkTrack: model.NoLink}}
}

func (e *MidiCvTrackEngine) Reset() {
	for i := range e.voices {
		e.voices[i] = voice{}
	}
}

func (e *MidiCvTrackEngine) Tick(globalTick uint32) {}
func (e *MidiCvTrackEngine) Update(dt float64)      {}

func (e *MidiCvTrackEngine) ReceiveMidi(port midi.Port, channel uint8, msg midi.Message) {
	if e.channel != 0 && channel != e.channel-1 {
		return
	}
	var ch, key, vel uint8
	switch {
	case msg.Raw.GetNoteOn(&ch, &key, &vel):
		e.noteOn(key)
	case msg.Raw.GetNoteOff(&ch, &key, &vel):
		e.noteOff(key)
	}
}

func (e *MidiCvTrackEngine) noteOn(note uint8) {
	for i := range e.voices {
		if !e.voices[i].active {
			e.voices[i] = voice{active: true, note: note}
			return
		}
	}
	// Polyphony exhausted: steal the first voice, matching common hardware
	// sequencer behavior rather than dropping the note.
	e.voices[0] = voice{active: true, note: note}
}

func (e *MidiCvTrackEngine) noteOff(note uint8) {
	for i := range e.voices {
		if e.voices[i].active && e.voices[i].note == note {
			e.voices[i].active = false
		}
	}
}

func (e *MidiCvTrackEngine) GateOutput(subIndex int) bool {
	i := clamp(subIndex, midiCvVoices)
	return e.voices[i].active && !e.mute
}

func (e *MidiCvTrackEngine) CvOutput(subIndex int) float32 {
	i := clamp(subIndex, midiCvVoices)
	return noteToCv(e.voices[i].note)
}

// IdleGateOutput/IdleCvOutput are not meaningful for a polyphonic MIDI
// voice bank; IdleOutput always reports false, so the output router never
// selects them.
func (e *MidiCvTrackEngine) IdleGateOutput(subIndex int) bool  { return false }
func (e *MidiCvTrackEngine) IdleCvOutput(subIndex int) float32 { return 0 }
func (e *MidiCvTrackEngine) IdleOutput() bool                  { return false }

func (e *MidiCvTrackEngine) TrackMode() model.TrackMode { return model.TrackModeMidiCv }
func (e *MidiCvTrackEngine) ChannelCount() int          { return midiCvVoices }
