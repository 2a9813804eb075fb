// Package param implements the control/parameter system: Knob, the
// per-control ramp state machine, the Controls registry that owns them,
// and Parameter, the constant-or-control-reference value instruments and
// effects read at sample rate.
//
// Adapted from the teacher's pkg/framework/param/smoother.go ramp state
// machine (linear smoothing variant) and pkg/framework/param/registry.go
// (RWMutex-guarded map), generalized from VST3 parameter IDs to named,
// tick-addressed controls fed by sysex commands instead of a host.
package param

import "github.com/kestrelaudio/corelx/internal/tick"

// Knob is a single named automation ramp: it holds a value of
// from_value at from_tick, linearly interpolates to to_value by
// to_tick, and holds to_value forever after.
type Knob struct {
	FromTick  tick.Sample
	ToTick    tick.Sample
	FromValue float64
	ToValue   float64
}

// NewKnob creates a knob already resting at a constant start value.
func NewKnob(start float64) *Knob {
	return &Knob{FromValue: start, ToValue: start}
}

// GetValue returns to_value for t >= to_tick, else the linear
// interpolation between the endpoints.
func (k *Knob) GetValue(t tick.Sample) float64 {
	if t >= k.ToTick {
		return k.ToValue
	}
	if t <= k.FromTick || k.ToTick <= k.FromTick {
		return k.FromValue
	}
	frac := float64(t-k.FromTick) / float64(k.ToTick-k.FromTick)
	return k.FromValue + (k.ToValue-k.FromValue)*frac
}

// SetTarget retargets the ramp: the new target becomes ToValue, the
// current value at t becomes FromValue, and ToTick = t + ControlRampSamples
// (a fixed 100Hz ramp rate).
func (k *Knob) SetTarget(t tick.Sample, value float64) {
	current := k.GetValue(t)
	k.FromTick = t
	k.FromValue = current
	k.ToValue = value
	k.ToTick = t + tick.ControlRampSamples
}
