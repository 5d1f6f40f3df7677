// Package main is the entry point for performer, a terminal harness that
// drives the engine against real or simulated MIDI ports. It exists only
// to exercise the core engine end-to-end for manual testing (spec section
// 1's host-OS non-goal applies to the engine, not to this harness).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "performer",
	Short: "Drive the sequencer engine against real or simulated peripherals",
	Long: `performer is a terminal harness around the sequencer engine.

It is not part of the engine itself: it opens real MIDI ports with
gomidi/rtmididrv, feeds them into engine.Engine, and prints what comes out,
so the engine can be exercised without the UI and persistence layers the
engine's own package boundary excludes.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(tapCmd)
}
