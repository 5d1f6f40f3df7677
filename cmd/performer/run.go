package main

import (
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/spf13/cobra"

	"github.com/jstefani/performer/config"
	"github.com/jstefani/performer/engine"
	"github.com/jstefani/performer/engine/clock"
	"github.com/jstefani/performer/midi"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

var (
	runInPortName  string
	runOutPortName string
	runBpm         float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the engine against real MIDI ports, printing routed outputs",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInPortName, "in", "", "substring of the MIDI input port name to bind as the DIN port (default: from config)")
	runCmd.Flags().StringVar(&runOutPortName, "out", "", "substring of the MIDI output port name to bind as the DIN port's send (default: from config)")
	runCmd.Flags().Float64Var(&runBpm, "bpm", 0, "initial project tempo (default: from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cmd.Flags().Changed("in") {
		runInPortName = cfg.MidiInPortName
	}
	if !cmd.Flags().Changed("out") {
		runOutPortName = cfg.MidiOutPortName
	}
	if !cmd.Flags().Changed("bpm") {
		runBpm = cfg.Bpm
	}

	project := model.NewProject()
	project.Bpm = runBpm
	e := engine.New(project)

	switch source, ok := cfg.SlaveSource(); {
	case ok && source == clock.SourceMidi:
		project.Clock.MidiRx = true
		project.Clock.MarkDirty()
	case ok && source == clock.SourceUsbMidi:
		project.Clock.UsbRx = true
		project.Clock.MarkDirty()
	}
	e.SetMessageHandler(func(text string, duration time.Duration) {
		fmt.Printf("[message %s] %s\n", duration, text)
	})

	stopListen, err := bindRealMidi(e)
	if err != nil {
		return err
	}
	if stopListen != nil {
		defer stopListen()
	}

	e.Start()
	fmt.Println("running, ctrl+c to quit")

	ticker := time.NewTicker(time.Second / 384)
	defer ticker.Stop()

	var prevGate [params.TrackCount]bool
	for range ticker.C {
		e.Update((time.Second / 384).Seconds())
		out := e.Outputs()
		if out.Gate != prevGate {
			printGates(out.Gate)
			prevGate = out.Gate
		}
	}
	return nil
}

func printGates(gate [params.TrackCount]bool) {
	var b strings.Builder
	for i, g := range gate {
		if i > 0 {
			b.WriteByte(' ')
		}
		if g {
			b.WriteString("X")
		} else {
			b.WriteString(".")
		}
	}
	fmt.Println(b.String())
}

// bindRealMidi opens the requested input/output ports and wires them to
// the engine's fan-in/fan-out (spec section 1: the port transport itself
// is an out-of-scope collaborator the engine only consumes through
// ReceiveRealtimeByte/ReceiveMessage/BindMidiSender).
func bindRealMidi(e *engine.Engine) (stop func(), err error) {
	if runOutPortName != "" {
		outPort, ok := findOutPort(runOutPortName)
		if !ok {
			return nil, fmt.Errorf("no output port matching %q", runOutPortName)
		}
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("opening output port %s: %w", outPort.String(), err)
		}
		e.BindMidiSender(midi.DIN, midi.Sender(send))
	}

	if runInPortName == "" {
		return nil, nil
	}
	inPort, ok := findInPort(runInPortName)
	if !ok {
		return nil, fmt.Errorf("no input port matching %q", runInPortName)
	}
	stopFn, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		for _, b := range msg { // gomidi.Message is a []byte
			if e.ReceiveRealtimeByte(midi.DIN, b) {
				return
			}
		}
		e.ReceiveMessage(midi.Message{Port: midi.DIN, Raw: msg, Channel: midi.ChannelOf(msg)})
	})
	if err != nil {
		return nil, fmt.Errorf("listening on input port %s: %w", inPort.String(), err)
	}
	return stopFn, nil
}

func findInPort(substr string) (drivers.In, bool) {
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(substr)) {
			return p, true
		}
	}
	return nil, false
}

func findOutPort(substr string) (drivers.Out, bool) {
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), strings.ToLower(substr)) {
			return p, true
		}
	}
	return nil, false
}
