package midi

import "testing"

type fakeClock struct {
	calls []struct {
		source int
		b      byte
	}
}

func (c *fakeClock) SlaveHandleMidi(source int, b byte) {
	c.calls = append(c.calls, struct {
		source int
		b      byte
	}{source, b})
}

func TestFilterByteDivertsClockBytes(t *testing.T) {
	clock := &fakeClock{}
	f := NewFanIn(clock)
	f.BindClockSource(USB, 7)

	if consumed := f.FilterByte(USB, ByteClock); !consumed {
		t.Fatalf("expected clock byte to be consumed")
	}
	if len(clock.calls) != 1 || clock.calls[0].source != 7 || clock.calls[0].b != ByteClock {
		t.Fatalf("clock did not receive diverted byte: %+v", clock.calls)
	}

	if consumed := f.FilterByte(USB, 0x90); consumed {
		t.Fatalf("note-on status byte must not be consumed by the filter")
	}
}

func TestFilterByteDivertsSongPositionDataBytes(t *testing.T) {
	clock := &fakeClock{}
	f := NewFanIn(clock)
	f.BindClockSource(DIN, 1)

	if !f.FilterByte(DIN, ByteSongPos) {
		t.Fatalf("expected song position status byte to be consumed")
	}
	if !f.FilterByte(DIN, 16) {
		t.Fatalf("expected song position lsb to be diverted even though it isn't a clock byte")
	}
	if !f.FilterByte(DIN, 0) {
		t.Fatalf("expected song position msb to be diverted even though it isn't a clock byte")
	}
	if consumed := f.FilterByte(DIN, 0x90); consumed {
		t.Fatalf("filter must return to normal classification after the 3-byte message")
	}
	if len(clock.calls) != 3 {
		t.Fatalf("expected all 3 song-position bytes delivered to the clock, got %d", len(clock.calls))
	}
}

func TestFilterByteUnboundPortStillConsumesButDoesNotCrash(t *testing.T) {
	f := NewFanIn(nil)
	if !f.FilterByte(DIN, ByteStart) {
		t.Fatalf("expected clock byte to be reported consumed even with no clock bound")
	}
}

type recordingTrack struct {
	got []Message
}

func (r *recordingTrack) ReceiveMidi(port Port, channel uint8, msg Message) {
	r.got = append(r.got, msg)
}

type alwaysArmedLearn struct {
	consume bool
}

func (l *alwaysArmedLearn) Armed() bool { return true }
func (l *alwaysArmedLearn) Learn(port Port, channel uint8, msg Message) bool {
	return l.consume
}

func TestDispatchOrderAndLearnShortCircuit(t *testing.T) {
	f := NewFanIn(nil)
	learn := &alwaysArmedLearn{consume: true}
	f.SetLearnSink(learn)

	var routed bool
	f.SetRoutingSink(func(port Port, msg Message) { routed = true })

	track := &recordingTrack{}
	f.AddTrack(track)

	f.Dispatch(Message{Port: DIN, Channel: 2})

	if routed {
		t.Errorf("routing must not see a message MIDI-learn consumed")
	}
	if len(track.got) != 0 {
		t.Errorf("track engines must not see a message MIDI-learn consumed")
	}

	learn.consume = false
	f.Dispatch(Message{Port: DIN, Channel: 3})

	if !routed {
		t.Errorf("routing should see a message learn did not consume")
	}
	if len(track.got) != 1 || track.got[0].Channel != 3 {
		t.Errorf("track engine should have received the dispatched message: %+v", track.got)
	}
}

func TestDispatchFansOutToAllTracks(t *testing.T) {
	f := NewFanIn(nil)
	a, b := &recordingTrack{}, &recordingTrack{}
	f.AddTrack(a)
	f.AddTrack(b)

	f.Dispatch(Message{Port: USB, Channel: 0})

	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("both tracks should receive the message: a=%d b=%d", len(a.got), len(b.got))
	}
}
