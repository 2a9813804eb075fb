package param

import (
	"sync"

	"github.com/kestrelaudio/corelx/internal/logging"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/tick"
)

// Controls is the registry mapping control name to Knob. It is created
// lazily: a name is first seen via an UpdateControls sysex event. Readers
// (track workers, at sample rate) take the shared side of the lock;
// the single writer (the DSP loop's ingest, at 100Hz) takes the
// exclusive side.
type Controls struct {
	mu     sync.RWMutex
	knobs  map[string]*Knob
	logger *logging.Logger
}

// NewControls creates an empty registry. A nil logger falls back to the
// process-wide default.
func NewControls(logger *logging.Logger) *Controls {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controls{knobs: make(map[string]*Knob), logger: logger}
}

// Get returns the knob for name and whether it exists.
func (c *Controls) Get(name string) (*Knob, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k, ok := c.knobs[name]
	return k, ok
}

// SetTarget applies a new ramp target for name at t, creating the knob
// (starting at target, i.e. no initial ramp) if it does not yet exist.
func (c *Controls) SetTarget(name string, t tick.Sample, target float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.knobs[name]
	if !ok {
		c.knobs[name] = NewKnob(target)
		return
	}
	k.SetTarget(t, target)
}

// Ingest applies every knob target in an UpdateControls sysex payload:
// one SetTarget call per entry, keyed by the event's stamped tick.
func (c *Controls) Ingest(events []midi.EventAt) {
	for _, e := range events {
		kind, js, ok := midi.DecodeSysex(e.Msg)
		if !ok || kind != midi.SysexUpdateControls || e.Tick == nil {
			continue
		}
		payload, err := midi.ParseUpdateControls(js)
		if err != nil {
			c.logger.Warnf("param: malformed UpdateControls sysex payload: %v", err)
			continue
		}
		for name, target := range payload.Knobs {
			c.SetTarget(name, *e.Tick, target)
		}
	}
}

// AdvanceTo is a no-op placeholder call site for the DSP loop's
// controls-advance step: Knob.GetValue is computed on demand from
// absolute tick, so there is no per-block state to advance. The call
// exists so a future stateful knob implementation (e.g. a cached
// last-value) has an obvious hook.
func (c *Controls) AdvanceTo(tick.Sample) {}
