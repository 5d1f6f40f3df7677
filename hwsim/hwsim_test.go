package hwsim

import "testing"

func TestCvOutputsClampsOutOfRangeChannel(t *testing.T) {
	var cv CvOutputs
	cv.Set(-1, 1.0)
	cv.Set(999, 1.0)
	if cv.Get(-1) != 0 || cv.Get(999) != 0 {
		t.Errorf("out-of-range channel access should be a safe no-op")
	}
}

func TestGateOutputsRoundTrip(t *testing.T) {
	var g GateOutputs
	g.Set(2, true)
	if !g.Get(2) {
		t.Errorf("expected channel 2 gated high")
	}
	if g.Get(3) {
		t.Errorf("untouched channel should default low")
	}
}

func TestDioCountsRisingEdgesOnly(t *testing.T) {
	var d Dio
	d.ClockCallback(true)
	d.ClockCallback(true) // still high: not a new edge
	d.ClockCallback(false)
	d.ClockCallback(true) // second rising edge
	if d.ClockRises != 2 {
		t.Errorf("ClockRises = %d, want 2", d.ClockRises)
	}
}
