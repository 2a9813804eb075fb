package fx

import (
	"math"
	"testing"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
)

type fakeEffect struct {
	name       string
	fastUpdate bool
	initCount  int
	updated    bool
	rendered   bool
}

func (f *fakeEffect) Name() string           { return f.name }
func (f *fakeEffect) Init()                  { f.initCount++ }
func (f *fakeEffect) CanFastUpdate(Effect) bool { return f.fastUpdate }
func (f *fakeEffect) FastUpdate(Effect)       { f.updated = true }
func (f *fakeEffect) Render(tick.Sample, *audio.Buffer, []midi.EventAt) {
	f.rendered = true
}

func TestChainSetInitializesEffects(t *testing.T) {
	c := NewChain()
	e1, e2 := &fakeEffect{name: "a"}, &fakeEffect{name: "b"}
	c.Set([]Effect{e1, e2})

	if e1.initCount != 1 || e2.initCount != 1 {
		t.Errorf("Init counts = %d/%d, want 1/1", e1.initCount, e2.initCount)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestChainCanFastUpdateRequiresNameAndLengthMatch(t *testing.T) {
	c := NewChain()
	c.Set([]Effect{&fakeEffect{name: "lpf", fastUpdate: true}})

	if c.CanFastUpdate([]Effect{&fakeEffect{name: "lpf", fastUpdate: true}, &fakeEffect{name: "echo", fastUpdate: true}}) {
		t.Error("CanFastUpdate should be false on length mismatch")
	}
	if c.CanFastUpdate([]Effect{&fakeEffect{name: "echo", fastUpdate: true}}) {
		t.Error("CanFastUpdate should be false on name mismatch")
	}
	if !c.CanFastUpdate([]Effect{&fakeEffect{name: "lpf", fastUpdate: true}}) {
		t.Error("CanFastUpdate should be true on matching name/position")
	}
}

func TestChainFastUpdateAppliesInPlace(t *testing.T) {
	c := NewChain()
	e := &fakeEffect{name: "lpf", fastUpdate: true}
	c.Set([]Effect{e})

	c.FastUpdate([]Effect{&fakeEffect{name: "lpf", fastUpdate: true}})
	if !e.updated {
		t.Error("FastUpdate should have been applied to the chain's effect")
	}
}

func TestChainRenderRunsEveryEffectInOrder(t *testing.T) {
	c := NewChain()
	e1, e2 := &fakeEffect{name: "a"}, &fakeEffect{name: "b"}
	c.Set([]Effect{e1, e2})

	buf := audio.New(8)
	c.Render(0, buf, nil)

	if !e1.rendered || !e2.rendered {
		t.Error("Render should invoke every effect in the chain")
	}
}

func TestEchoFeedsBackDelayedSignal(t *testing.T) {
	e := NewEcho(param.Const(0.01), param.Const(0.5), param.Const(0.0), param.Const(1.0))
	e.Init()

	buf := audio.New(audio.SampleRate / 50) // longer than the 10ms delay
	buf.Left[0] = 1.0
	buf.Right[0] = 1.0

	e.Render(0, buf, nil)

	delaySamples := int(0.01 * audio.SampleRate)
	if buf.Left[delaySamples] == 0 {
		t.Errorf("expected delayed impulse to appear at sample %d", delaySamples)
	}
	if buf.Left[0] != 0 {
		t.Errorf("dry gain is 0, sample 0 should be purely wet (delayed) output: got %f", buf.Left[0])
	}
}

func TestLPFAttenuatesHighFrequencyContent(t *testing.T) {
	lpf := NewLPF(param.Const(0.05), param.Const(0.707))
	lpf.Init()

	buf := audio.New(2048)
	for i := range buf.Left {
		v := float32(math.Sin(2 * math.Pi * 15000 * float64(i) / audio.SampleRate))
		buf.Left[i] = v
		buf.Right[i] = v
	}
	inputPeak := peakOf(buf.Left)

	lpf.Render(0, buf, nil)
	outputPeak := peakOf(buf.Left)

	if outputPeak >= inputPeak {
		t.Errorf("LPF should attenuate a 15kHz tone: in=%f out=%f", inputPeak, outputPeak)
	}
}

func TestLPFAndHPFRejectFastUpdateAcrossKinds(t *testing.T) {
	lpf := NewLPF(param.Const(0.5), param.Const(0.707)).(*biquadEffect)
	hpf := NewHPF(param.Const(0.5), param.Const(0.707)).(*biquadEffect)

	if lpf.CanFastUpdate(hpf) {
		t.Error("lpf.CanFastUpdate(hpf) should be false: different kinds")
	}
}

func peakOf(buf []float32) float32 {
	var peak float32
	for _, v := range buf {
		a := v
		if a < 0 {
			a = -a
		}
		if a > peak {
			peak = a
		}
	}
	return peak
}
