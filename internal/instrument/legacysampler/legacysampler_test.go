package legacysampler

import (
	"testing"

	"github.com/kestrelaudio/corelx/internal/voice"
)

// newIdleSampler builds a LegacySampler with an allocator over voices
// that have never been triggered, so Stop()/AllNotesOff() never reaches
// into the (here nil) synthesizer — New() itself requires a real
// SoundFont file to parse, which this package has no fixture for.
func newIdleSampler(n int) *LegacySampler {
	l := &LegacySampler{}
	l.voicePool = make([]*noteVoice, n)
	voices := make([]voice.Voice, n)
	for i := range l.voicePool {
		l.voicePool[i] = &noteVoice{clock: &l.clock}
		voices[i] = l.voicePool[i]
	}
	l.allocator = voice.NewAllocator(voices)
	return l
}

func TestKindReportsLegacySampler(t *testing.T) {
	l := newIdleSampler(1)
	if l.Kind() != "legacy_sampler" {
		t.Errorf("Kind() = %q, want legacy_sampler", l.Kind())
	}
}

func TestCanFastUpdateAlwaysFalse(t *testing.T) {
	l := newIdleSampler(1)
	other := newIdleSampler(1)
	if l.CanFastUpdate(other) {
		t.Error("LegacySampler must always force a structural replacement, never a fast update")
	}
	l.FastUpdate(other) // must be a safe no-op
}

func TestStopOnIdlePoolNeverTouchesSynth(t *testing.T) {
	l := newIdleSampler(4)
	l.Stop() // every voice.active is false, so noteVoice.Stop must skip its synth call
}

func TestNoteVoiceTracksActiveStateWithoutTriggering(t *testing.T) {
	var clock int64
	v := &noteVoice{clock: &clock}
	if v.IsActive() {
		t.Error("a fresh noteVoice should start inactive")
	}
	if v.GetAge() != 0 {
		t.Errorf("GetAge() = %d, want 0 before any trigger", v.GetAge())
	}
}

func TestIdleSamplerVoicePoolStartsWithFreshVoices(t *testing.T) {
	l := newIdleSampler(2)
	// Check the pool size and each voice's initial note without ever
	// calling TriggerNote/ReleaseNote, which would reach into the nil
	// synthesizer.
	if got := len(l.voicePool); got != 2 {
		t.Fatalf("voicePool length = %d, want 2", got)
	}
	for _, v := range l.voicePool {
		if v.GetNote() != 0 {
			t.Errorf("fresh voice note = %d, want 0", v.GetNote())
		}
	}
}
