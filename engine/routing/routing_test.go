package routing

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
)

func TestMidiCCRoutesToBpmWithinRange(t *testing.T) {
	project := model.NewProject()
	project.Routings[0] = model.RoutingRule{
		Enabled: true,
		Source:  model.RoutingSource{Kind: model.RoutingSourceMidiCC, Channel: 0, Controller: 7},
		Target:  model.RoutingTarget{Kind: model.RoutingTargetBpm},
		Min:     60,
		Max:     180,
	}
	e := New(project)

	e.ReceiveMidi(midi.DIN, midi.Message{Raw: gomidi.ControlChange(0, 7, 127)})

	if project.Bpm < 179 || project.Bpm > 180 {
		t.Errorf("bpm = %v, want ~180 at full CC value", project.Bpm)
	}
}

func TestUnmatchedControllerDoesNotRoute(t *testing.T) {
	project := model.NewProject()
	before := project.Bpm
	project.Routings[0] = model.RoutingRule{
		Enabled: true,
		Source:  model.RoutingSource{Kind: model.RoutingSourceMidiCC, Channel: 0, Controller: 7},
		Target:  model.RoutingTarget{Kind: model.RoutingTargetBpm},
		Min:     60,
		Max:     180,
	}
	e := New(project)
	e.ReceiveMidi(midi.DIN, midi.Message{Raw: gomidi.ControlChange(0, 1, 127)})
	if project.Bpm != before {
		t.Errorf("a rule for a different controller must not fire")
	}
}

func TestCvInputRoutesToSwing(t *testing.T) {
	project := model.NewProject()
	project.Routings[0] = model.RoutingRule{
		Enabled: true,
		Source:  model.RoutingSource{Kind: model.RoutingSourceCvInput, CvChannel: 2},
		Target:  model.RoutingTarget{Kind: model.RoutingTargetSwing},
		Min:     0,
		Max:     75,
	}
	e := New(project)
	e.UpdateCvInputs([]float32{0, 0, 1.0})
	if project.Swing != 75 {
		t.Errorf("swing = %d, want 75", project.Swing)
	}
}

func TestDisabledRuleNeverFires(t *testing.T) {
	project := model.NewProject()
	before := project.Bpm
	project.Routings[0] = model.RoutingRule{
		Enabled: false,
		Source:  model.RoutingSource{Kind: model.RoutingSourceMidiCC, Channel: 0, Controller: 7},
		Target:  model.RoutingTarget{Kind: model.RoutingTargetBpm},
		Min:     60,
		Max:     180,
	}
	e := New(project)
	e.ReceiveMidi(midi.DIN, midi.Message{Raw: gomidi.ControlChange(0, 7, 127)})
	if project.Bpm != before {
		t.Errorf("disabled rule must not fire")
	}
}
