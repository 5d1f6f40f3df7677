// Package midi implements the fan-in/fan-out contract (C6): receive-side
// filtering that diverts real-time clock bytes to the clock before they
// reach normal dispatch, and send-side multiplexing across the DIN and USB
// MIDI ports. Byte-level parsing itself is an out-of-scope collaborator
// (spec section 1); this package consumes and produces already-decoded
// gitlab.com/gomidi/midi/v2 messages.
package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Port identifies which physical MIDI port a message arrived on or should
// be sent to.
type Port int

const (
	DIN Port = iota
	USB
)

func (p Port) String() string {
	if p == USB {
		return "usb"
	}
	return "din"
}

// Real-time status bytes, MIDI 1.0 ยง4.2.
const (
	ByteClock     byte = 0xF8
	ByteStart     byte = 0xFA
	ByteContinue  byte = 0xFB
	ByteStop      byte = 0xFC
	ByteSongPos   byte = 0xF2
)

// IsClockByte reports whether b is one of the real-time bytes C1 consumes
// directly. Song-position pointer is a 3-byte message (status + 2 data
// bytes); the status byte alone is enough for the receive filter to divert
// it before the rest of the message is assembled.
func IsClockByte(b byte) bool {
	switch b {
	case ByteClock, ByteStart, ByteContinue, ByteStop, ByteSongPos:
		return true
	}
	return false
}

// Message is one complete, already-assembled MIDI message together with the
// port it arrived on (or should be sent on).
type Message struct {
	Port    Port
	Raw     gomidi.Message
	Channel uint8
}

// SongPositionValue decodes the 14-bit beat count from a 3-byte 0xF2
// song-position-pointer message (status, lsb, msb). ok is false if raw is
// not shaped like one.
func SongPositionValue(raw []byte) (value uint16, ok bool) {
	if len(raw) != 3 || raw[0] != ByteSongPos {
		return 0, false
	}
	return uint16(raw[2])<<7 | uint16(raw[1]), true
}

// ChannelOf extracts the channel nibble from a note or CC message, the two
// kinds every consumer in this module (track.MidiCvTrackEngine,
// engine/routing) actually dispatches on. It returns 0 for anything else
// (real-time bytes, system common, sysex, polyphonic aftertouch and other
// channel-voice kinds this module never reads).
func ChannelOf(raw gomidi.Message) uint8 {
	var ch, d1, d2 uint8
	if raw.GetNoteOn(&ch, &d1, &d2) || raw.GetNoteOff(&ch, &d1, &d2) || raw.GetControlChange(&ch, &d1, &d2) {
		return ch
	}
	return 0
}
