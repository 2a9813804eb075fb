package fx

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/chorus"
)

// ChorusEffect wraps pkg/dspkernel/chorus as an Effect, supplementing
// the named LPF/HPF/Echo set (original_source's
// nocturne/cpp/src/dsp/chorus.cc shows the original system shipped
// one; this core carries the equivalent).
type ChorusEffect struct {
	rate, depthMs, delayMs, mix param.Parameter
	kernel                       *chorus.Chorus
}

// NewChorus builds a chorus effect from its four Parameters.
func NewChorus(rate, depthMs, delayMs, mix param.Parameter) *ChorusEffect {
	return &ChorusEffect{
		rate: rate, depthMs: depthMs, delayMs: delayMs, mix: mix,
		kernel: chorus.New(float64(audio.SampleRate)),
	}
}

func (c *ChorusEffect) Name() string { return "chorus" }

func (c *ChorusEffect) Init() { c.kernel.Reset() }

func (c *ChorusEffect) CanFastUpdate(other Effect) bool {
	_, ok := other.(*ChorusEffect)
	return ok
}

func (c *ChorusEffect) FastUpdate(other Effect) {
	o := other.(*ChorusEffect)
	c.rate, c.depthMs, c.delayMs, c.mix = o.rate, o.depthMs, o.delayMs, o.mix
}

func (c *ChorusEffect) Render(startTick tick.Sample, buf *audio.Buffer, _ []midi.EventAt) {
	c.kernel.SetRate(c.rate.GetValue(startTick))
	c.kernel.SetDepth(c.depthMs.GetValue(startTick))
	c.kernel.SetDelay(c.delayMs.GetValue(startTick))
	c.kernel.SetMix(c.mix.GetValue(startTick))

	for i := range buf.Left {
		buf.Left[i], buf.Right[i] = c.kernel.ProcessStereo(buf.Left[i], buf.Right[i])
	}
}
