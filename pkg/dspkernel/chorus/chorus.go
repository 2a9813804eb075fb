// Package chorus implements a two-voice stereo chorus, one of the bonus
// effects corelx's domain stack enriches the effect chain with
// (SPEC_FULL.md §4.7).
//
// Adapted from the teacher's pkg/dsp/modulation package (chorus.go's
// multi-voice design, lfo.go's sine LFO), narrowed to the fixed
// two-voice stereo-spread case the Chorus effect wrapper needs; the
// teacher's waveform selector, sync, and up-to-four-voice configuration
// are dropped since nothing in this core exposes them as Parameters.
package chorus

import (
	"math"

	"github.com/kestrelaudio/corelx/pkg/dspkernel/delay"
)

const maxDelaySeconds = 0.06 // base delay + depth headroom

// Chorus is a two-voice, sine-modulated stereo chorus.
type Chorus struct {
	sampleRate float64

	rate, depthMs, delayMs, mix float64

	lineL, lineR *delay.Line
	phaseL, phaseR float64
	phaseInc       float64
}

// New builds a chorus tuned for sampleRate with sensible defaults
// (0.5Hz rate, 2ms depth, 20ms base delay, 50% mix).
func New(sampleRate float64) *Chorus {
	c := &Chorus{
		sampleRate: sampleRate,
		rate:       0.5,
		depthMs:    2.0,
		delayMs:    20.0,
		mix:        0.5,
		lineL:      delay.New(maxDelaySeconds, sampleRate),
		lineR:      delay.New(maxDelaySeconds, sampleRate),
		phaseR:     0.5, // right voice phase-offset from left for stereo width
	}
	c.setRate(c.rate)
	return c
}

func (c *Chorus) setRate(hz float64) {
	c.rate = hz
	c.phaseInc = hz / c.sampleRate
}

// SetRate sets the LFO rate in Hz.
func (c *Chorus) SetRate(hz float64) { c.setRate(hz) }

// SetDepth sets the modulation depth in milliseconds.
func (c *Chorus) SetDepth(ms float64) { c.depthMs = ms }

// SetDelay sets the base delay time in milliseconds.
func (c *Chorus) SetDelay(ms float64) { c.delayMs = ms }

// SetMix sets the wet/dry mix, 0=dry 1=wet.
func (c *Chorus) SetMix(mix float64) { c.mix = mix }

func (c *Chorus) advance(phase float64) float64 {
	phase += c.phaseInc
	if phase >= 1 {
		phase -= 1
	}
	return phase
}

// ProcessStereo runs one stereo sample through the chorus.
func (c *Chorus) ProcessStereo(inL, inR float32) (outL, outR float32) {
	c.lineL.Write(inL)
	c.lineR.Write(inR)

	lfoL := math.Sin(2 * math.Pi * c.phaseL)
	lfoR := math.Sin(2 * math.Pi * c.phaseR)
	c.phaseL = c.advance(c.phaseL)
	c.phaseR = c.advance(c.phaseR)

	delayL := (c.delayMs + c.depthMs*lfoL) / 1000.0
	delayR := (c.delayMs + c.depthMs*lfoR) / 1000.0

	wetL := c.lineL.ReadSeconds(delayL)
	wetR := c.lineR.ReadSeconds(delayR)

	outL = inL*float32(1-c.mix) + wetL*float32(c.mix)
	outR = inR*float32(1-c.mix) + wetR*float32(c.mix)
	return
}

// Reset clears the internal delay lines and LFO phase.
func (c *Chorus) Reset() {
	c.lineL.Reset()
	c.lineR.Reset()
	c.phaseL, c.phaseR = 0, 0.5
}
