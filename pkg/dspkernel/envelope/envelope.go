// Package envelope implements the core's ADSR envelope generator.
//
// Adapted from the teacher's pkg/dsp/envelope/envelope.go, which computes
// exponential per-sample coefficients from a 60dB time constant. corelx's
// sampler instead specifies a literal per-phase-linear contract — the
// envelope value stays in [0,1], moving monotonically within each
// phase — so this generator walks each phase with a constant per-sample
// increment derived from the phase's millisecond duration and the
// sample rate, rather than the teacher's exponential curve.
package envelope

import "github.com/kestrelaudio/corelx/internal/audio"

// Phase identifies the ADSR stage an envelope is in.
type Phase int

const (
	Idle Phase = iota
	Attack
	Decay
	Sustain
	Release
	Done
)

// Envelope is a four-phase ADSR generator with linear per-phase ramps,
// driven one sample at a time. Both the sampler's fixed 1ms anti-click
// "wrapper" envelope and its user-supplied ADSR envelope are instances
// of this type.
type Envelope struct {
	attackMs, decayMs, releaseMs float64
	sustainLevel                 float64

	phase Phase
	value float64

	attackInc  float64
	decayInc   float64
	releaseInc float64
}

// New builds an envelope from phase durations in milliseconds and a
// sustain level in [0,1]. The envelope starts Idle at value 0.
func New(attackMs, decayMs, releaseMs, sustainLevel float64) *Envelope {
	e := &Envelope{
		attackMs:     attackMs,
		decayMs:      decayMs,
		releaseMs:    releaseMs,
		sustainLevel: sustainLevel,
	}
	e.attackInc = perSampleInc(attackMs, 1.0)
	e.decayInc = perSampleInc(decayMs, 1.0-sustainLevel)
	e.releaseInc = perSampleInc(releaseMs, sustainLevel)
	return e
}

// NewFixed builds a symmetric attack/release envelope with no decay or
// sustain stage, used for the sampler's 1ms anti-click wrapper envelope.
func NewFixed(attackReleaseMs float64) *Envelope {
	return New(attackReleaseMs, 0, attackReleaseMs, 1.0)
}

func perSampleInc(durationMs, span float64) float64 {
	if durationMs <= 0 {
		return span // a zero-duration phase completes in a single sample
	}
	samples := durationMs * float64(audio.SampleRate) / 1000.0
	if samples < 1 {
		samples = 1
	}
	return span / samples
}

// NoteOn starts the envelope at the Attack phase from its current value
// (zero on first use, whatever value it held on retrigger).
func (e *Envelope) NoteOn() {
	e.phase = Attack
}

// NoteOff moves the envelope into Release from its current value,
// regardless of which phase it was in.
func (e *Envelope) NoteOff() {
	if e.phase == Idle || e.phase == Done {
		return
	}
	e.releaseInc = perSampleInc(e.releaseMs, e.value)
	e.phase = Release
}

// Tick advances the envelope by one sample and returns its new value.
func (e *Envelope) Tick() float64 {
	switch e.phase {
	case Attack:
		e.value += e.attackInc
		// Tolerate float rounding so an N-sample attack ends on sample N.
		if e.value >= 1.0-1e-9 {
			e.value = 1.0
			e.phase = Decay
		}
	case Decay:
		e.value -= e.decayInc
		if e.value <= e.sustainLevel {
			e.value = e.sustainLevel
			e.phase = Sustain
		}
	case Sustain:
		e.value = e.sustainLevel
	case Release:
		e.value -= e.releaseInc
		if e.value <= 0 {
			e.value = 0
			e.phase = Done
		}
	case Idle, Done:
		e.value = 0
	}
	return e.value
}

// Value returns the envelope's current value without advancing it.
func (e *Envelope) Value() float64 {
	return e.value
}

// Phase returns the envelope's current phase.
func (e *Envelope) Phase() Phase {
	return e.phase
}

// Finished reports whether the envelope has reached zero after
// release, the removal condition for a sampler voice.
func (e *Envelope) Finished() bool {
	return e.phase == Done
}
