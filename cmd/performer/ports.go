package main

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI input and output ports",
	RunE:  runPorts,
}

// portScanTimeout bounds how long we wait on the driver before giving up;
// CoreMIDI is known to hang on some hosts.
const portScanTimeout = 3 * time.Second

func runPorts(cmd *cobra.Command, args []string) error {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		fmt.Println("inputs:")
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("outputs:")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		return nil
	case <-time.After(portScanTimeout):
		return fmt.Errorf("timed out after %s waiting on the MIDI driver", portScanTimeout)
	}
}
