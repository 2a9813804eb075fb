// Package sampler implements the sysex-driven sample playback
// instrument, exercising the core's envelope and polyphony contracts.
// It has no ratchet handling.
//
// Grounded on original_source/src/core/dsp/sampler.cc's PlaySample /
// StopSample / Render shape, reimplemented against
// pkg/dspkernel/envelope's linear-phase ADSR and the teacher's
// allocation-free buffer-processing discipline.
package sampler

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/param"
	"github.com/kestrelaudio/corelx/internal/samplepack"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/envelope"
	"github.com/kestrelaudio/corelx/pkg/dspkernel/pan"
)

// smoothingMs is the fixed anti-click wrapper envelope duration, and
// the minimum-duration-in-multiples threshold a SamplerPlay command
// must clear.
const smoothingMs = 1.0

var smoothingSamples = float64(audio.SampleRate) * smoothingMs / 1000.0

// voice is one playing instance of a sample.
type voice struct {
	sample *samplepack.Sample

	position  float64
	direction float64
	rate      float64
	start     float64
	end       float64

	amp param.Parameter
	pan param.Parameter

	wrapper *envelope.Envelope
	user    *envelope.Envelope

	releasing bool
	order     int64
}

// active reports whether the voice should keep rendering: a voice is
// removed when either envelope reaches zero (its release has fully
// decayed) or its position has crossed the sample's end — whichever
// happens first.
func (v *voice) active() bool {
	crossed := v.position > v.end
	if v.direction < 0 {
		crossed = v.position < v.end
	}
	return !crossed && !v.wrapper.Finished() && !v.user.Finished()
}

// Sampler is a polyphonic sample player keyed by (pack, name), driven
// entirely by SamplerPlay/SamplerStop sysex commands on its track.
type Sampler struct {
	manager  *samplepack.Manager
	registry *param.Controls

	voices map[string][]*voice
	order  int64
}

// New builds a Sampler backed by manager for sample resolution and
// registry for amp/pan control-name references.
func New(manager *samplepack.Manager, registry *param.Controls) *Sampler {
	return &Sampler{
		manager:  manager,
		registry: registry,
		voices:   make(map[string][]*voice),
	}
}

func (s *Sampler) Kind() string { return "sampler" }

func (s *Sampler) Init() error { return nil }

func (s *Sampler) CanFastUpdate(other instrument.Instrument) bool {
	_, ok := other.(*Sampler)
	return ok
}

func (s *Sampler) FastUpdate(other instrument.Instrument) {
	// A sampler never carries static settings beyond its shared manager
	// and registry references, both fixed at construction; sample
	// selection and envelope shape arrive dynamically via sysex, so a
	// fast update from one sampler to another is simply a no-op: the
	// new instance's manager/registry already point at the same
	// process-wide singletons.
}

func (s *Sampler) Stop() {
	s.voices = make(map[string][]*voice)
}

func voiceKey(pack, name string) string { return pack + "/" + name }

func (s *Sampler) handlePlay(payload midi.SamplerPlayPayload) {
	sample, ok := s.manager.GetSample(payload.Pack, payload.Name)
	if !ok {
		return // configuration error: unknown sample, ignore
	}
	frames := float64(sample.Frames())

	startFrac, endFrac := *payload.Start, *payload.End
	rate := *payload.Rate
	direction := 1.0
	if rate < 0 {
		startFrac, endFrac = endFrac, startFrac
		rate = -rate
	}
	if rate == 0 {
		return
	}

	startSample := startFrac * frames
	endSample := endFrac * frames

	span := endSample - startSample
	if span < 0 {
		span = -span
		direction = -1
	}
	durationSamples := span / rate
	if durationSamples <= 2*smoothingSamples {
		return // too short to smooth in and out, reject
	}

	amp := resolveParam(s.registry, payload.Amp, payload.AmpRef, 1.0)
	panP := resolveParam(s.registry, payload.Pan, payload.PanRef, 0.0)

	s.order++
	v := &voice{
		sample:    sample,
		position:  startSample,
		direction: direction,
		rate:      rate,
		start:     startSample,
		end:       endSample,
		amp:       amp,
		pan:       panP,
		wrapper:   envelope.NewFixed(smoothingMs),
		user:      envelope.New(*payload.Attack, *payload.Decay, *payload.Release, *payload.Level),
		order:     s.order,
	}
	v.wrapper.NoteOn()
	v.user.NoteOn()

	key := voiceKey(payload.Pack, payload.Name)
	s.voices[key] = append(s.voices[key], v)
}

func resolveParam(registry *param.Controls, literal *float64, ref *string, fallback float64) param.Parameter {
	if ref != nil {
		return param.ControlRef(registry, *ref, fallback)
	}
	if literal != nil {
		return param.Const(*literal)
	}
	return param.Const(fallback)
}

func (s *Sampler) handleStop(payload midi.SamplerStopPayload) {
	key := voiceKey(payload.Pack, payload.Name)
	voices := s.voices[key]
	var latest *voice
	for _, v := range voices {
		if !v.releasing && (latest == nil || v.order > latest.order) {
			latest = v
		}
	}
	if latest != nil {
		latest.releasing = true
		latest.wrapper.NoteOff()
	}
}

// Render consumes SamplerPlay/SamplerStop sysex events addressed to
// this track and renders every active voice's contribution into buf.
func (s *Sampler) Render(startTick tick.Sample, events []midi.EventAt, buf *audio.Buffer) {
	for _, e := range events {
		kind, js, ok := midi.DecodeSysex(e.Msg)
		if !ok {
			continue
		}
		switch kind {
		case midi.SysexSamplerPlay:
			if payload, err := midi.ParseSamplerPlay(js); err == nil {
				s.handlePlay(payload)
			}
		case midi.SysexSamplerStop:
			if payload, err := midi.ParseSamplerStop(js); err == nil {
				s.handleStop(payload)
			}
		}
	}

	for key, voices := range s.voices {
		kept := voices[:0]
		for _, v := range voices {
			s.renderVoice(startTick, v, buf)
			if v.active() {
				kept = append(kept, v)
			}
		}
		s.voices[key] = kept
	}
}

func (s *Sampler) renderVoice(startTick tick.Sample, v *voice, buf *audio.Buffer) {
	frames := float64(len(v.sample.Left) - 1)
	for i := range buf.Left {
		if !v.releasing {
			distanceToEnd := v.end - v.position
			if v.direction < 0 {
				distanceToEnd = v.position - v.end
			}
			if distanceToEnd <= smoothingSamples {
				v.releasing = true
				v.wrapper.NoteOff()
			}
		}

		wrapperVal := v.wrapper.Tick()
		userVal := v.user.Tick()
		if wrapperVal <= 0 || userVal <= 0 {
			if !v.active() {
				break
			}
			v.position += v.direction * v.rate
			continue
		}

		ampVal := v.amp.GetValue(startTick + tick.Sample(i))
		panVal := v.pan.GetValue(startTick + tick.Sample(i))
		gain := wrapperVal * userVal * ampVal

		pos := v.position
		if pos < 0 {
			pos = 0
		}
		if pos > frames {
			pos = frames
		}
		i0 := int(pos)
		i1 := i0 + 1
		if i1 > int(frames) {
			i1 = int(frames)
		}
		frac := float32(pos - float64(i0))

		sL := v.sample.Left[i0]*(1-frac) + v.sample.Left[i1]*frac
		sR := v.sample.Right[i0]*(1-frac) + v.sample.Right[i1]*frac
		mono := (sL + sR) * 0.5 * float32(gain)

		leftGain := float32(pan.LeftPan(panVal))
		rightGain := float32(pan.RightPan(panVal))
		buf.Left[i] += mono * leftGain
		buf.Right[i] += mono * rightGain

		v.position += v.direction * v.rate

		if v.position < 0 || v.position > frames {
			v.wrapper.NoteOff()
			v.user.NoteOff()
		}
	}
}
