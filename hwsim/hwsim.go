// Package hwsim provides in-memory stand-ins for the hardware peripherals
// the engine drives: analog gate/CV outputs and the digital clock/reset
// pins. DAC/ADC drivers themselves are an out-of-scope collaborator (spec
// section 1); this package offers stand-ins shaped for them, the way a
// simulator build would. No other package in this module imports it: the
// engine writes its routed outputs into route.Outputs, and the digital pin
// callbacks are installed through Engine.BindClockOutputs.
package hwsim

import "github.com/jstefani/performer/params"

// CvOutputs is a fixed bank of analog CV channels; out-of-range channels
// are ignored on Set and read as 0.
type CvOutputs struct {
	values [params.TrackCount]float32
}

func (c *CvOutputs) Set(channel int, value float32) {
	if channel < 0 || channel >= params.TrackCount {
		return
	}
	c.values[channel] = value
}

func (c *CvOutputs) Get(channel int) float32 {
	if channel < 0 || channel >= params.TrackCount {
		return 0
	}
	return c.values[channel]
}

// GateOutputs is a fixed bank of digital gate channels.
type GateOutputs struct {
	values [params.TrackCount]bool
}

func (g *GateOutputs) Set(channel int, value bool) {
	if channel < 0 || channel >= params.TrackCount {
		return
	}
	g.values[channel] = value
}

func (g *GateOutputs) Get(channel int) bool {
	if channel < 0 || channel >= params.TrackCount {
		return false
	}
	return g.values[channel]
}

// Dio models the digital clock and reset pins C1 drives directly (spec
// 4.1's outputClock callbacks), recording both the current level and a
// rising-edge counter so tests can assert on pulse shape without polling.
type Dio struct {
	ClockLevel    bool
	ResetLevel    bool
	StartStopLevel bool

	ClockRises int
	ResetRises int
}

// ClockCallback matches clock.Clock's outputClock cbClock signature.
func (d *Dio) ClockCallback(v bool) {
	if v && !d.ClockLevel {
		d.ClockRises++
	}
	d.ClockLevel = v
}

// ResetCallback matches clock.Clock's outputClock cbReset signature.
func (d *Dio) ResetCallback(v bool) {
	if v && !d.ResetLevel {
		d.ResetRises++
	}
	d.ResetLevel = v
}

// StartStopCallback matches clock.Clock's outputClock cbStartStop
// signature.
func (d *Dio) StartStopCallback(v bool) { d.StartStopLevel = v }
