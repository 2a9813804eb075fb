// Package fx implements the core's effect chain: an ordered list of
// named, in-place stereo processors with a fast-update contract for
// hot-swapping parameters without a full track replacement.
//
// Adapted from the teacher's pkg/framework/dsp.Chain (named-processor,
// bypass-aware chain), specialized to stereo in-place buffers and to
// the CanFastUpdate/FastUpdate contract this package requires.
package fx

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/tick"
)

// Effect is one stage of the chain: a named, in-place stereo processor
// driven by per-block MIDI events (for effects with a sysex-driven
// control surface) and the block's starting tick (for tick-anchored
// Parameters).
type Effect interface {
	// Name identifies the effect for CanFastUpdate comparisons.
	Name() string
	// Init (re)initializes internal state for a fresh run; called once
	// when the effect enters a chain.
	Init()
	// CanFastUpdate reports whether other can replace this effect's
	// parameters in place without a structural chain rebuild.
	CanFastUpdate(other Effect) bool
	// FastUpdate copies other's Parameters into this effect in place.
	// Only called after CanFastUpdate(other) returned true.
	FastUpdate(other Effect)
	// Render processes buf in place for the block starting at startTick,
	// applying any control-relevant events first.
	Render(startTick tick.Sample, buf *audio.Buffer, events []midi.EventAt)
}

// Chain is an ordered list of effects, rendered in place, in order.
type Chain struct {
	effects []Effect
}

// NewChain builds an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Effects returns the chain's effects in render order.
func (c *Chain) Effects() []Effect {
	return c.effects
}

// Set replaces the chain's effect list wholesale and initializes each
// new effect. Used on the track-replacement path where CanFastUpdate
// already determined a structural change occurred.
func (c *Chain) Set(effects []Effect) {
	for _, e := range effects {
		e.Init()
	}
	c.effects = effects
}

// CanFastUpdate reports whether other's effect list is a name-for-name,
// position-for-position match with this chain's. Any structural
// change — added, removed, reordered, or renamed effects — forces a
// full Set instead.
func (c *Chain) CanFastUpdate(other []Effect) bool {
	if len(other) != len(c.effects) {
		return false
	}
	for i, e := range c.effects {
		if e.Name() != other[i].Name() || !e.CanFastUpdate(other[i]) {
			return false
		}
	}
	return true
}

// FastUpdate applies other's parameters onto this chain's effects in
// place. Callers must have already confirmed CanFastUpdate(other).
func (c *Chain) FastUpdate(other []Effect) {
	for i, e := range c.effects {
		e.FastUpdate(other[i])
	}
}

// Render runs the block through every effect in order, in place.
func (c *Chain) Render(startTick tick.Sample, buf *audio.Buffer, events []midi.EventAt) {
	for _, e := range c.effects {
		e.Render(startTick, buf, events)
	}
}

// Len returns the number of effects in the chain.
func (c *Chain) Len() int {
	return len(c.effects)
}
