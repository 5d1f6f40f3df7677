package midi

import gomidi "gitlab.com/gomidi/midi/v2"

// Sender writes one already-built wire message to a physical port. The real
// implementation (rtmididrv-backed, USB stack, etc.) lives outside this
// module's core per spec section 1; cmd/performer provides it.
type Sender func(gomidi.Message) error

// FanOut implements the send side of C6: sendMidi(port, message) plus the
// clock TX multiplexing gated by midiTx/usbTx flags, installed as a
// callback from engine/clock.
type FanOut struct {
	senders [2]Sender // indexed by Port
}

// NewFanOut creates a FanOut with no ports open yet.
func NewFanOut() *FanOut { return &FanOut{} }

// BindPort installs the sender used for a given port. Passing nil disables
// sending on that port (messages are silently dropped, matching a closed
// physical port).
func (f *FanOut) BindPort(port Port, send Sender) { f.senders[port] = send }

// Send transmits one message on the given port. It is a no-op if the port
// has no sender bound, so UI and track engines can call SendMidi freely
// without checking port state first.
func (f *FanOut) Send(port Port, raw gomidi.Message) error {
	send := f.senders[port]
	if send == nil {
		return nil
	}
	return send(raw)
}

// ClockTxGate reports, for a given port, whether outbound clock real-time
// bytes should be transmitted. Callers (engine/clock's outputMidi callback)
// consult this per clockSetup.midiTx/usbTx before calling Send — FanOut
// itself holds no opinion on clock setup, it only multiplexes sends.
type ClockTxGate func(port Port) bool

// SendClockByte sends a single real-time byte on every port the gate
// enables. Real-time bytes never assemble into a gomidi.Message with extra
// data bytes, so this bypasses Send's data-message path.
func (f *FanOut) SendClockByte(b byte, enabled ClockTxGate) {
	msg := gomidi.Message([]byte{b})
	for _, port := range []Port{DIN, USB} {
		if enabled(port) {
			f.Send(port, msg)
		}
	}
}
