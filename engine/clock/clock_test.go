package clock

import (
	"testing"

	"github.com/jstefani/performer/params"
)

func drain(t *testing.T, c *Clock) []uint32 {
	t.Helper()
	var ticks []uint32
	var tick uint32
	for c.CheckTick(&tick) {
		ticks = append(ticks, tick)
	}
	return ticks
}

func TestMasterModeGeneratesTicksAtBpm(t *testing.T) {
	c := New()
	c.SetMasterBpm(120)
	c.MasterStart()
	if !c.CheckStart() {
		t.Fatalf("expected a start edge")
	}

	// One quarter note at 120bpm is 0.5s and should emit PPQN ticks.
	c.Advance(0.5)
	ticks := drain(t, c)
	if len(ticks) == 0 {
		t.Fatalf("expected ticks to be generated")
	}
	if ticks[len(ticks)-1] < 180 || ticks[len(ticks)-1] > 192 {
		t.Errorf("expected roughly 192 ticks after one quarter note, got %d", ticks[len(ticks)-1])
	}
}

func TestStoppedClockGeneratesNoTicks(t *testing.T) {
	c := New()
	c.Advance(1.0)
	if ticks := drain(t, c); len(ticks) != 0 {
		t.Errorf("stopped clock produced ticks: %v", ticks)
	}
	if !c.IsIdle() {
		t.Errorf("a clock that was never started should be idle")
	}
}

func TestMasterStopThenResumePreservesTick(t *testing.T) {
	c := New()
	c.SetMasterBpm(120)
	c.MasterStart()
	c.Advance(0.25)
	drain(t, c)
	tickAtStop := c.Tick()

	c.MasterStop()
	if !c.CheckStop() {
		t.Fatalf("expected a stop edge")
	}
	c.Advance(1.0)
	if c.Tick() != tickAtStop {
		t.Errorf("tick advanced while stopped: %d -> %d", tickAtStop, c.Tick())
	}

	c.MasterResume()
	if !c.CheckResume() {
		t.Fatalf("expected a resume edge")
	}
	if c.Tick() != tickAtStop {
		t.Errorf("resume must not reset the tick counter, got %d want %d", c.Tick(), tickAtStop)
	}
}

func TestSlaveSessionPriorityFirstEdgeWins(t *testing.T) {
	c := New()
	c.SlaveConfigure(SourceExternal, 24, SlaveEnabled)
	c.SlaveConfigure(SourceMidi, 8, SlaveEnabled)

	c.SlaveStart(SourceExternal)
	if !c.CheckStart() {
		t.Fatalf("expected a start edge")
	}

	// A MIDI edge must be ignored while SourceExternal holds the session.
	c.SlaveHandleMidi(SourceMidi, byteClock)
	c.Advance(1.0)
	if ticks := drain(t, c); len(ticks) != 0 {
		t.Errorf("non-authoritative source advanced the clock: %v", ticks)
	}

	c.SlaveTick(SourceExternal)
	c.Advance(0.01)
	if ticks := drain(t, c); len(ticks) == 0 {
		t.Errorf("authoritative source's edge should advance the clock")
	}
}

func TestSlaveResetWhileFreeRunningKeepsRunning(t *testing.T) {
	c := New()
	c.SlaveConfigure(SourceExternal, 24, SlaveEnabled|SlaveFreeRunning)
	c.SlaveStart(SourceExternal)
	c.SlaveTick(SourceExternal)
	c.Advance(0.1)
	drain(t, c)

	c.SlaveReset(SourceExternal)
	if !c.IsRunning() {
		t.Errorf("reset edge in FreeRunning mode must not stop the clock")
	}
	if c.Tick() != 0 {
		t.Errorf("reset edge must zero the tick counter, got %d", c.Tick())
	}
}

func TestMidiClockDivisorMatchesTwentyFourPpq(t *testing.T) {
	c := New()
	c.SlaveConfigure(SourceMidi, midiClockDivisor, SlaveEnabled)
	c.SlaveHandleMidi(SourceMidi, byteStart)
	if !c.CheckStart() {
		t.Fatalf("MIDI start byte should raise a start edge")
	}
	for i := 0; i < 24; i++ {
		c.SlaveHandleMidi(SourceMidi, byteClock)
		c.Advance(0.02)
	}
	drain(t, c)
	if c.Tick() == 0 {
		t.Errorf("24 MIDI clocks should have advanced the tick counter")
	}
}

func TestSongPositionPointerSeeksWithoutStarting(t *testing.T) {
	c := New()
	c.SlaveConfigure(SourceMidi, midiClockDivisor, SlaveEnabled)
	c.SlaveHandleMidi(SourceMidi, byteSongPos)
	c.SlaveHandleMidi(SourceMidi, 16) // lsb
	c.SlaveHandleMidi(SourceMidi, 0)  // msb -> value = 16

	want := uint32(16) * 6 * uint32(midiClockDivisor)
	if c.Tick() != want {
		t.Errorf("Tick() = %d, want %d", c.Tick(), want)
	}
	if c.IsRunning() {
		t.Errorf("song position pointer must not start playback")
	}
}

func TestOutputMidiFiresOnClockBoundary(t *testing.T) {
	c := New()
	c.SetMasterBpm(120)
	var bytesOut []byte
	c.OutputMidi(func(b byte) { bytesOut = append(bytesOut, b) })
	c.MasterStart()

	c.Advance(0.5) // one quarter note: 24 MIDI-clock boundaries
	count := 0
	for _, b := range bytesOut {
		if b == byteClock {
			count++
		}
	}
	if count < 20 || count > 26 {
		t.Errorf("expected ~24 MIDI clock bytes per quarter note, got %d", count)
	}
}

func TestOutputClockPulsesAndClearsAfterPulseWidth(t *testing.T) {
	c := New()
	c.SetMasterBpm(120)
	c.OutputConfigure(1, 5) // 5ms pulse
	var level bool
	c.OutputClock(func(v bool) { level = v }, nil, nil)
	c.MasterStart()

	// Advance to the first 24ppq boundary: pulse should go high.
	ticksPerSecond := 120.0 * float64(params.PPQN) / 60.0
	c.Advance(float64(midiClockDivisor) / ticksPerSecond)
	drain(t, c)
	if !level {
		t.Fatalf("expected clock pin to pulse high at a clock boundary")
	}

	// Advance past the pulse width: pin should go back low.
	c.Advance(0.01)
	if level {
		t.Errorf("expected clock pin to return low after the pulse width elapses")
	}
}
