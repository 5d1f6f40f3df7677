package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jstefani/performer/tempo"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Exercise tap-tempo estimation from the terminal",
	Long:  `Press Enter on each beat; tap prints the median-filtered BPM estimate after each tap. Ctrl+C to exit.`,
	RunE:  runTap,
}

func runTap(cmd *cobra.Command, args []string) error {
	tt := tempo.NewTapTempo()
	fmt.Println("press enter on each beat, ctrl+c to quit")

	scanner := bufio.NewScanner(os.Stdin)
	started := time.Now()
	for scanner.Scan() {
		tt.Advance(time.Since(started).Seconds())
		started = time.Now()
		if bpm, ok := tt.Tap(); ok {
			fmt.Printf("bpm: %.1f\n", bpm)
		} else {
			fmt.Println("tap...")
		}
	}
	return scanner.Err()
}
