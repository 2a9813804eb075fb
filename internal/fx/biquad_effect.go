package fx

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/filter"
)

type biquadKind int

const (
	kindLowpass biquadKind = iota
	kindHighpass
)

// biquadEffect backs both LPF and HPF: a resonant biquad whose cutoff
// Parameter is normalized [0,1] and mapped through the mel scale.
type biquadEffect struct {
	name     string
	kind     biquadKind
	cutoff   param.Parameter
	resonance param.Parameter
	filterL, filterR *filter.Biquad
	lastCutoffHz, lastQ float64
}

func newBiquadEffect(name string, kind biquadKind, cutoff, resonance param.Parameter) *biquadEffect {
	return &biquadEffect{
		name:      name,
		kind:      kind,
		cutoff:    cutoff,
		resonance: resonance,
		filterL:   filter.NewBiquad(1),
		filterR:   filter.NewBiquad(1),
	}
}

// NewLPF builds a lowpass effect. cutoff is normalized [0,1]; resonance
// is the biquad Q, typically in [0.5, 10].
func NewLPF(cutoff, resonance param.Parameter) Effect {
	return newBiquadEffect("lpf", kindLowpass, cutoff, resonance)
}

// NewHPF builds a highpass effect. cutoff is normalized [0,1]; resonance
// is the biquad Q, typically in [0.5, 10].
func NewHPF(cutoff, resonance param.Parameter) Effect {
	return newBiquadEffect("hpf", kindHighpass, cutoff, resonance)
}

func (b *biquadEffect) Name() string { return b.name }

func (b *biquadEffect) Init() {
	b.filterL.Reset()
	b.filterR.Reset()
	b.lastCutoffHz, b.lastQ = -1, -1
}

func (b *biquadEffect) CanFastUpdate(other Effect) bool {
	o, ok := other.(*biquadEffect)
	return ok && o.kind == b.kind
}

func (b *biquadEffect) FastUpdate(other Effect) {
	o := other.(*biquadEffect)
	b.cutoff, b.resonance = o.cutoff, o.resonance
}

func (b *biquadEffect) Render(startTick tick.Sample, buf *audio.Buffer, _ []midi.EventAt) {
	normalized := b.cutoff.GetValue(startTick)
	q := b.resonance.GetValue(startTick)
	if q <= 0 {
		q = 0.707
	}
	hz := filter.NormalizedCutoffToHz(normalized)
	if hz != b.lastCutoffHz || q != b.lastQ {
		switch b.kind {
		case kindLowpass:
			b.filterL.SetLowpass(float64(audio.SampleRate), hz, q)
			b.filterR.SetLowpass(float64(audio.SampleRate), hz, q)
		case kindHighpass:
			b.filterL.SetHighpass(float64(audio.SampleRate), hz, q)
			b.filterR.SetHighpass(float64(audio.SampleRate), hz, q)
		}
		b.lastCutoffHz, b.lastQ = hz, q
	}
	b.filterL.Process(buf.Left, 0)
	b.filterR.Process(buf.Right, 0)
}
