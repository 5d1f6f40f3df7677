// Package route implements C5, the output router: it maps each physical
// gate/CV channel to its logical source track engine, applying global
// overrides and per-track idle-display fallback.
package route

import (
	"github.com/jstefani/performer/engine/track"
	"github.com/jstefani/performer/model"
	"github.com/jstefani/performer/params"
)

// GateOverride is a global gate override: when active, emit Values on
// each physical channel and skip per-track gate routing entirely (spec
// 4.5). Each physical channel gets its own value, matching the engine's
// setGateOutputOverride API taking a full per-channel value set.
type GateOverride struct {
	Active bool
	Values [params.TrackCount]bool
}

// CvOverride is GateOverride's CV-domain counterpart.
type CvOverride struct {
	Active bool
	Values [params.TrackCount]float32
}

// Outputs is the physical sink the router writes into: params.TrackCount
// gate and CV channels.
type Outputs struct {
	Gate [params.TrackCount]bool
	Cv   [params.TrackCount]float32
}

// Router implements C5 against a live track.Container.
type Router struct {
	tracks *track.Container

	GateOverride GateOverride
	CvOverride   CvOverride
}

// New wires a Router to the engine's track container.
func New(tracks *track.Container) *Router {
	return &Router{tracks: tracks}
}

// Route computes one pass of physical outputs (spec 4.5). selectedTrack is
// the UI's currently selected track index, the only one allowed to show an
// idle display this pass. idle reports clock.isIdle() for the pass.
func (r *Router) Route(project *model.Project, selectedTrack int, idle bool, out *Outputs) {
	for i := 0; i < params.TrackCount; i++ {
		if i != selectedTrack {
			r.tracks.Get(i).ClearIdleOutput()
		}
	}

	gateConsumed := map[int]int{}
	cvConsumed := map[int]int{}

	for i := 0; i < params.TrackCount; i++ {
		if r.GateOverride.Active {
			out.Gate[i] = r.GateOverride.Values[i]
		} else {
			out.Gate[i] = r.routeGate(project.GateOutputTracks[i], idle, gateConsumed)
		}

		if r.CvOverride.Active {
			out.Cv[i] = r.CvOverride.Values[i]
		} else {
			out.Cv[i] = r.routeCv(project.CvOutputTracks[i], idle, cvConsumed)
		}
	}
}

func (r *Router) routeGate(source int, idle bool, consumed map[int]int) bool {
	e := r.tracks.Get(source)
	k := consumed[source]
	consumed[source] = k + 1
	if idle && e.IdleOutput() {
		return e.IdleGateOutput(k)
	}
	return e.GateOutput(k)
}

func (r *Router) routeCv(source int, idle bool, consumed map[int]int) float32 {
	e := r.tracks.Get(source)
	k := consumed[source]
	consumed[source] = k + 1
	if idle && e.IdleOutput() {
		return e.IdleCvOutput(k)
	}
	return e.CvOutput(k)
}
