// Package reverb implements a Freeverb-style stereo reverb, one of the
// bonus effects corelx's domain stack enriches the effect chain with
// (SPEC_FULL.md §4.7).
//
// Adapted from the teacher's pkg/dsp/reverb package (schroeder.go's
// CombFilter/AllPassFilter plus freeverb.go's Freeverb), trimmed of the
// freeze-mode and width controls the effect wrapper does not expose.
package reverb

const (
	numCombs     = 8
	numAllpasses = 4
	fixedGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	stereoSpread = 23
)

var combTuning = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var allpassTuning = [numAllpasses]int{556, 441, 341, 225}

type combFilter struct {
	buffer      []float32
	idx         int
	feedback    float64
	filterstore float32
	damp1, damp2 float64
}

func newCombFilter(delaySamples int) *combFilter {
	return &combFilter{buffer: make([]float32, delaySamples), feedback: 0.5, damp1: 0.5, damp2: 0.5}
}

func (c *combFilter) setFeedback(fb float64)  { c.feedback = fb }
func (c *combFilter) setDamping(d float64)    { c.damp1 = d; c.damp2 = 1.0 - d }

func (c *combFilter) process(input float32) float32 {
	output := c.buffer[c.idx]
	c.filterstore = float32(float64(output)*c.damp2 + float64(c.filterstore)*c.damp1)
	c.buffer[c.idx] = input + c.filterstore*float32(c.feedback)
	c.idx++
	if c.idx >= len(c.buffer) {
		c.idx = 0
	}
	return output
}

type allpassFilter struct {
	buffer   []float32
	idx      int
	feedback float64
}

func newAllpassFilter(delaySamples int) *allpassFilter {
	return &allpassFilter{buffer: make([]float32, delaySamples), feedback: 0.5}
}

func (a *allpassFilter) process(input float32) float32 {
	bufout := a.buffer[a.idx]
	output := -input + bufout
	a.buffer[a.idx] = input + float32(a.feedback)*bufout
	a.idx++
	if a.idx >= len(a.buffer) {
		a.idx = 0
	}
	return output
}

// Freeverb is a stereo Schroeder-Moorer reverb with room size, damping,
// and wet/dry controls.
type Freeverb struct {
	combL, combR       [numCombs]*combFilter
	allpassL, allpassR [numAllpasses]*allpassFilter

	roomSize, damping, wetLevel, dryLevel float64
}

// New builds a Freeverb instance tuned for sampleRate.
func New(sampleRate float64) *Freeverb {
	f := &Freeverb{roomSize: 0.5, damping: 0.5, wetLevel: 0.33, dryLevel: 0.0}
	scale := sampleRate / 44100.0
	for i := 0; i < numCombs; i++ {
		f.combL[i] = newCombFilter(int(float64(combTuning[i]) * scale))
		f.combR[i] = newCombFilter(int(float64(combTuning[i]+stereoSpread) * scale))
	}
	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i] = newAllpassFilter(int(float64(allpassTuning[i]) * scale))
		f.allpassR[i] = newAllpassFilter(int(float64(allpassTuning[i]+stereoSpread) * scale))
		f.allpassL[i].feedback = 0.5
		f.allpassR[i].feedback = 0.5
	}
	f.update()
	return f
}

// SetRoomSize sets the room size in [0,1].
func (f *Freeverb) SetRoomSize(size float64) { f.roomSize = clamp01(size); f.update() }

// SetDamping sets the damping amount in [0,1].
func (f *Freeverb) SetDamping(d float64) { f.damping = clamp01(d); f.update() }

// SetMix sets the wet level directly and the dry level to 1-wet.
func (f *Freeverb) SetMix(wet float64) { f.wetLevel = clamp01(wet); f.dryLevel = 1 - f.wetLevel }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (f *Freeverb) update() {
	feedback := f.roomSize*scaleRoom + offsetRoom
	for i := 0; i < numCombs; i++ {
		f.combL[i].setFeedback(feedback)
		f.combR[i].setFeedback(feedback)
		f.combL[i].setDamping(f.damping * scaleDamping)
		f.combR[i].setDamping(f.damping * scaleDamping)
	}
}

// ProcessStereo runs one stereo sample through the reverb.
func (f *Freeverb) ProcessStereo(inL, inR float32) (outL, outR float32) {
	input := (inL + inR) * float32(fixedGain)
	for i := 0; i < numCombs; i++ {
		outL += f.combL[i].process(input)
		outR += f.combR[i].process(input)
	}
	for i := 0; i < numAllpasses; i++ {
		outL = f.allpassL[i].process(outL)
		outR = f.allpassR[i].process(outR)
	}
	outL = outL*float32(f.wetLevel) + inL*float32(f.dryLevel)
	outR = outR*float32(f.wetLevel) + inR*float32(f.dryLevel)
	return
}
