package fx

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/reverb"
)

// ReverbEffect wraps pkg/dspkernel/reverb as an Effect, supplementing
// the named LPF/HPF/Echo set (original_source's
// nocturne/cpp/src/dsp/early_reverb.cc shows the original system
// shipped one; this core carries the equivalent).
type ReverbEffect struct {
	roomSize, damping, mix param.Parameter
	kernel                  *reverb.Freeverb
}

// NewReverb builds a reverb effect from its three Parameters.
func NewReverb(roomSize, damping, mix param.Parameter) *ReverbEffect {
	return &ReverbEffect{
		roomSize: roomSize, damping: damping, mix: mix,
		kernel: reverb.New(float64(audio.SampleRate)),
	}
}

func (r *ReverbEffect) Name() string { return "reverb" }

func (r *ReverbEffect) Init() {}

func (r *ReverbEffect) CanFastUpdate(other Effect) bool {
	_, ok := other.(*ReverbEffect)
	return ok
}

func (r *ReverbEffect) FastUpdate(other Effect) {
	o := other.(*ReverbEffect)
	r.roomSize, r.damping, r.mix = o.roomSize, o.damping, o.mix
}

func (r *ReverbEffect) Render(startTick tick.Sample, buf *audio.Buffer, _ []midi.EventAt) {
	r.kernel.SetRoomSize(r.roomSize.GetValue(startTick))
	r.kernel.SetDamping(r.damping.GetValue(startTick))
	r.kernel.SetMix(r.mix.GetValue(startTick))

	for i := range buf.Left {
		buf.Left[i], buf.Right[i] = r.kernel.ProcessStereo(buf.Left[i], buf.Right[i])
	}
}
