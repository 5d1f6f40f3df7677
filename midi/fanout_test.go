package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestSendNoSenderIsNoop(t *testing.T) {
	f := NewFanOut()
	if err := f.Send(DIN, gomidi.NoteOn(0, 60, 100)); err != nil {
		t.Errorf("Send with no bound port should be a no-op, got err %v", err)
	}
}

func TestSendUsesBoundSender(t *testing.T) {
	f := NewFanOut()
	var sent []gomidi.Message
	f.BindPort(USB, func(m gomidi.Message) error {
		sent = append(sent, m)
		return nil
	})

	msg := gomidi.NoteOn(0, 60, 100)
	if err := f.Send(USB, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one message sent, got %d", len(sent))
	}

	if err := f.Send(DIN, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 1 {
		t.Errorf("DIN has no sender bound, must not have forwarded to USB's sender")
	}
}

func TestSendClockByteRespectsGate(t *testing.T) {
	f := NewFanOut()
	var dinCount, usbCount int
	f.BindPort(DIN, func(m gomidi.Message) error { dinCount++; return nil })
	f.BindPort(USB, func(m gomidi.Message) error { usbCount++; return nil })

	f.SendClockByte(ByteClock, func(port Port) bool { return port == USB })

	if dinCount != 0 {
		t.Errorf("DIN gate was false, should not have sent, got %d sends", dinCount)
	}
	if usbCount != 1 {
		t.Errorf("USB gate was true, expected 1 send, got %d", usbCount)
	}
}
