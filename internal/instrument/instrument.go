// Package instrument defines the core's instrument capability interface
// and its representative implementations: the sysex-driven sample
// player, an external-MIDI passthrough, a plugin-hosted adapter, and a
// supplementary legacy note-keyed sampler.
//
// Sampler, ExternalMidi, and Plugin are co-equal variants behind one
// small capability interface rather than a class hierarchy, the way
// the teacher's pkg/framework/dsp Processor interfaces keep concrete
// DSP stages interchangeable.
package instrument

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/tick"
)

// Instrument is the capability every track body implements: consume
// timed MIDI events for one block, render a stereo contribution, and
// support in-place reconfiguration where the kind allows it.
type Instrument interface {
	// Kind identifies the instrument variant for CanFastUpdate
	// comparisons and for Track snapshots.
	Kind() string
	// Init (re)initializes engine-managed resources; called once when
	// the instrument first enters a track, outside any render-path lock.
	Init() error
	// CanFastUpdate reports whether other's configuration can replace
	// this instrument's in place, without reallocation.
	CanFastUpdate(other Instrument) bool
	// FastUpdate applies other's configuration in place. Only called
	// after CanFastUpdate(other) returned true; must not allocate or
	// block on I/O.
	FastUpdate(other Instrument)
	// Render produces this block's contribution into buf, consuming any
	// events addressed to this instrument's track.
	Render(startTick tick.Sample, events []midi.EventAt, buf *audio.Buffer)
	// Stop releases any resources the instrument owns (open files,
	// plugin handles, worker threads) when its track is torn down.
	Stop()
}
