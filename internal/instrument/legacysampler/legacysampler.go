// Package legacysampler implements the second, simpler note-keyed
// sampler variant the original system carried alongside its
// sysex-driven one. corelx supplements it here as a genuinely legacy,
// non-default instrument kind: a SoundFont-backed, MIDI-note-triggered
// player rather than the sample-name/sysex-driven contract in
// instrument/sampler.
//
// Grounded on zurustar-son-et's pkg/vm/audio/midi.go and
// pkg/engine/midi_player.go, the one retrieval-pack repo embedding a
// go-meltysynth SoundFont synthesizer; its MIDIBridge.Write /
// ProcessMidiMessage / Render shape is adapted directly. Note
// triggering itself goes through the shared internal/voice.Allocator
// (adapted from the teacher's pkg/framework/voice allocator) rather
// than meltysynth's own internal voice management, since the engine
// already needs note-age tracking for the legacy instrument's
// TriggerNote/ReleaseNote-shaped Render contract.
package legacysampler

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/tick"
	"github.com/kestrelaudio/corelx/internal/voice"
)

const channel = int32(0)

// noteVoice adapts a MIDI channel+note pair to the voice.Voice
// interface purely for age-tracking and steal-ordering; actual sound
// generation is delegated entirely to the shared synthesizer.
type noteVoice struct {
	synth  *meltysynth.Synthesizer
	note   uint8
	active bool
	age    int64
	clock  *int64
}

func (v *noteVoice) IsActive() bool { return v.active }
func (v *noteVoice) GetNote() uint8 { return v.note }
func (v *noteVoice) GetAge() int64  { return v.age }

func (v *noteVoice) TriggerNote(note, velocity uint8) {
	*v.clock++
	v.note = note
	v.active = true
	v.age = *v.clock
	v.synth.ProcessMidiMessage(channel, 0x90, int32(note), int32(velocity))
}

func (v *noteVoice) ReleaseNote() {
	v.active = false
	v.synth.ProcessMidiMessage(channel, 0x80, int32(v.note), 0)
}

func (v *noteVoice) Stop() {
	if v.active {
		v.synth.ProcessMidiMessage(channel, 0x80, int32(v.note), 0)
	}
	v.active = false
}

// LegacySampler is the legacy, note-keyed instrument variant. It is
// never constructed by default track setup and always forces a
// structural track replacement on reconfiguration (CanFastUpdate
// always returns false), reflecting its legacy status.
type LegacySampler struct {
	synth      *meltysynth.Synthesizer
	allocator  *voice.Allocator
	clock      int64
	voicePool  []*noteVoice
	interleave []float32
}

// New loads a SoundFont bank from sf2Path and builds a legacy sampler
// with maxVoices polyphony.
func New(sf2Path string, maxVoices int) (*LegacySampler, error) {
	data, err := os.ReadFile(sf2Path)
	if err != nil {
		return nil, fmt.Errorf("legacysampler: read soundfont %q: %w", sf2Path, err)
	}
	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("legacysampler: parse soundfont: %w", err)
	}
	settings := meltysynth.NewSynthesizerSettings(int32(audio.SampleRate))
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("legacysampler: create synthesizer: %w", err)
	}

	l := &LegacySampler{synth: synth}
	l.voicePool = make([]*noteVoice, maxVoices)
	voices := make([]voice.Voice, maxVoices)
	for i := range l.voicePool {
		l.voicePool[i] = &noteVoice{synth: synth, clock: &l.clock}
		voices[i] = l.voicePool[i]
	}
	l.allocator = voice.NewAllocator(voices)
	return l, nil
}

func (l *LegacySampler) Kind() string { return "legacy_sampler" }

func (l *LegacySampler) Init() error { return nil }

// CanFastUpdate always returns false: the legacy sampler is never
// hot-swapped, only replaced (SPEC_FULL.md §4.6b).
func (l *LegacySampler) CanFastUpdate(instrument.Instrument) bool { return false }

func (l *LegacySampler) FastUpdate(instrument.Instrument) {}

func (l *LegacySampler) Stop() {
	l.allocator.AllNotesOff()
}

func (l *LegacySampler) Render(startTick tick.Sample, events []midi.EventAt, buf *audio.Buffer) {
	for _, e := range events {
		if _, note, vel, ok := e.Msg.IsNoteOn(); ok {
			l.allocator.NoteOn(note, vel)
			continue
		}
		if _, note, _, ok := e.Msg.IsNoteOff(); ok {
			l.allocator.NoteOff(note)
		}
	}

	l.synth.Render(buf.Left, buf.Right)
}
