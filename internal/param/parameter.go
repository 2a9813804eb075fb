package param

import "github.com/kestrelaudio/corelx/internal/tick"

// Parameter is a sum type: either a bare constant or a handle to a
// named Control, resolved lazily against a Controls registry. A
// missing control falls back to the parameter's constant — there is no
// dangling reference because the registry outlives every track within a
// session.
type Parameter struct {
	constant float64
	min, max float64
	hasRange bool

	controlName string
	isControl   bool
	registry    *Controls
	cached      *Knob
}

// Const builds a constant parameter.
func Const(value float64) Parameter {
	return Parameter{constant: value}
}

// ControlRef builds a parameter bound to a named control in registry,
// falling back to fallback if the control never appears.
func ControlRef(registry *Controls, name string, fallback float64) Parameter {
	return Parameter{
		constant:    fallback,
		controlName: name,
		isControl:   true,
		registry:    registry,
	}
}

// WithRange clamps GetValue's output to [min, max].
func (p Parameter) WithRange(min, max float64) Parameter {
	p.min, p.max, p.hasRange = min, max, true
	return p
}

// GetValue returns the parameter's value at tick t, clamped to
// [min,max] if a range was set.
func (p *Parameter) GetValue(t tick.Sample) float64 {
	v := p.resolve(t)
	if p.hasRange {
		if v < p.min {
			v = p.min
		} else if v > p.max {
			v = p.max
		}
	}
	return v
}

func (p *Parameter) resolve(t tick.Sample) float64 {
	if !p.isControl {
		return p.constant
	}
	if p.cached == nil {
		k, ok := p.registry.Get(p.controlName)
		if !ok {
			return p.constant
		}
		p.cached = k
	}
	p.registry.mu.RLock()
	v := p.cached.GetValue(t)
	p.registry.mu.RUnlock()
	return v
}
