package engine

import (
	"testing"
	"time"

	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

const tickDt = 1.0 / 384.0 // one engine tick at 120 BPM, PPQN=192

func TestMasterTransportDrivesFourOnTheFloorOnSelectedTrack(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()

	rises := 0
	prev := false
	for i := 0; i < 767; i++ { // one tick per update: stays inside the first 768-tick loop
		e.Update(tickDt)
		g := e.Outputs().Gate[0]
		if g && !prev {
			rises++
		}
		prev = g
	}

	if rises != 4 {
		t.Errorf("rises = %d, want 4 (default four-on-the-floor pattern over one loop)", rises)
	}
}

func TestStopHaltsTransportWithoutResettingTick(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()
	for i := 0; i < 50; i++ {
		e.Update(tickDt)
	}
	tickBefore := e.Tick()

	e.Stop()
	e.Update(tickDt)

	if e.IsRunning() {
		t.Errorf("expected transport stopped")
	}
	if e.Tick() != tickBefore {
		t.Errorf("tick = %d, want unchanged %d after stop", e.Tick(), tickBefore)
	}
}

func TestResumeContinuesFromCurrentTickWithoutReset(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()
	for i := 0; i < 50; i++ {
		e.Update(tickDt)
	}
	e.Stop()
	e.Update(tickDt)
	tickAtStop := e.Tick()

	e.Resume()
	e.Update(tickDt)

	if e.Tick() <= tickAtStop {
		t.Errorf("expected resume to continue ticking forward from %d, got %d", tickAtStop, e.Tick())
	}
}

func TestSyncedPatternChangeCommitsOnlyAtMeasureBoundary(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()

	for i := 0; i < 100; i++ {
		e.Update(tickDt)
	}

	project.PlayState.Tracks[0].RequestPattern(5, model.RequestSynced)

	// measure boundary (syncMeasure=1) is at tick 0 or tick 767; walk up to
	// but not including it and confirm nothing commits early.
	for i := 0; i < 666; i++ {
		e.Update(tickDt)
		if project.PlayState.Tracks[0].Pattern != 0 {
			t.Fatalf("pattern committed early at tick %d", e.Tick())
		}
	}

	e.Update(tickDt) // lands on tick 767, the end-of-measure boundary
	if project.PlayState.Tracks[0].Pattern != 5 {
		t.Errorf("pattern = %d, want 5 committed at the measure boundary (tick %d)", project.PlayState.Tracks[0].Pattern, e.Tick())
	}
}

func TestImmediateMuteCommitsOnTheVeryNextTick(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()
	e.Update(tickDt)

	project.PlayState.Tracks[0].RequestMute(true, model.RequestImmediate)
	e.Update(tickDt)

	if !project.PlayState.Tracks[0].Mute {
		t.Errorf("expected immediate mute to commit on the next tick")
	}
}

func TestNudgeTempoRampsStrengthTowardFullOverOneSecond(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.NudgeTempoSetDirection(1)

	for i := 0; i < 10; i++ {
		e.Update(0.1)
	}

	if s := e.NudgeTempoStrength(); s < 0.99 {
		t.Errorf("nudge strength = %v, want ~1 after 1s of ramping", s)
	}
}

func TestNudgeTempoReturnsToZeroWhenDirectionCleared(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.NudgeTempoSetDirection(1)
	for i := 0; i < 10; i++ {
		e.Update(0.1)
	}
	e.NudgeTempoSetDirection(0)
	for i := 0; i < 10; i++ {
		e.Update(0.1)
	}
	if s := e.NudgeTempoStrength(); s > 0.01 {
		t.Errorf("nudge strength = %v, want ~0 after ramping back down", s)
	}
}

func TestLockPausesTrackMutationUntilUnlocked(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()

	e.Lock()
	if !e.IsLocked() {
		t.Fatal("expected engine to report locked")
	}

	before := e.Tick()
	for i := 0; i < 20; i++ {
		e.Update(tickDt)
	}
	if e.Tick() != before {
		t.Errorf("tick advanced to %d while locked, want unchanged %d", e.Tick(), before)
	}

	e.Unlock()
	if e.IsLocked() {
		t.Fatal("expected engine to report unlocked")
	}

	e.Update(tickDt)
	if e.Tick() == before {
		t.Errorf("expected ticking to resume after unlock")
	}
}

func TestStartRezeroesTickCounter(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()
	for i := 0; i < 300; i++ {
		e.Update(tickDt)
	}

	e.Stop()
	e.Update(tickDt)
	e.Start() // Start re-zeroes the tick counter; tracks reset on the next Update

	if e.Tick() != 0 {
		t.Errorf("tick = %d, want 0 immediately after Start", e.Tick())
	}
}

func TestGateOutputOverrideTakesPrecedenceOverTrackRouting(t *testing.T) {
	project := model.NewProject()
	e := New(project)
	e.Start()

	var values [8]bool
	for i := range values {
		values[i] = true
	}
	e.SetGateOutputOverride(true, values)
	e.Update(tickDt)

	for i, g := range e.Outputs().Gate {
		if !g {
			t.Errorf("channel %d = false, want override value true", i)
		}
	}
}

func TestReceiveMessageDropsOnceQueueCapacityReached(t *testing.T) {
	project := model.NewProject()
	e := New(project)

	var dropped string
	e.SetMessageHandler(func(text string, duration time.Duration) { dropped = text })

	for i := 0; i < params.MaxPendingMidi+1; i++ {
		e.ReceiveMessage(midi.Message{Port: midi.DIN})
	}

	if dropped == "" {
		t.Errorf("expected a dropped-message notification once the queue filled")
	}
	if len(e.pendingMidi) != params.MaxPendingMidi {
		t.Errorf("pendingMidi len = %d, want capped at %d", len(e.pendingMidi), params.MaxPendingMidi)
	}
}

func TestReceiveRealtimeByteIsFilteredFromMessageDispatch(t *testing.T) {
	project := model.NewProject()
	e := New(project)

	consumed := e.ReceiveRealtimeByte(0, 0xF8) // DIN port, MIDI clock byte
	if !consumed {
		t.Errorf("expected a real-time clock byte to be consumed by the filter")
	}
}
