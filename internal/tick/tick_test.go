package tick

import (
	"testing"
	"time"

	"github.com/kestrelaudio/corelx/internal/audio"
)

func TestFromDurationToDurationRoundTrip(t *testing.T) {
	d := 10 * time.Millisecond
	s := FromDuration(d)
	want := Sample(audio.SampleRate * 10 / 1000)
	if s != want {
		t.Errorf("FromDuration(10ms) = %d, want %d", s, want)
	}
	back := s.ToDuration()
	if back != d {
		t.Errorf("ToDuration round trip = %v, want %v", back, d)
	}
}

func TestLookaheadTicks(t *testing.T) {
	want := Sample(BlockProcessingDelay * audio.BlockSize)
	if LookaheadTicks != want {
		t.Errorf("LookaheadTicks = %d, want %d", LookaheadTicks, want)
	}
}

func TestStampTickAddsLookaheadAndClampsToNonNegative(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("event scheduled now", func(t *testing.T) {
		current := Sample(1000)
		got := StampTick(current, now, now)
		want := current + LookaheadTicks
		if got != want {
			t.Errorf("StampTick = %d, want %d", got, want)
		}
	})

	t.Run("event scheduled in the future", func(t *testing.T) {
		current := Sample(1000)
		at := now.Add(1 * time.Second)
		got := StampTick(current, now, at)
		want := current + Sample(audio.SampleRate) + LookaheadTicks
		if got != want {
			t.Errorf("StampTick = %d, want %d", got, want)
		}
	})

	t.Run("event scheduled far in the past clamps to the current tick", func(t *testing.T) {
		current := Sample(1000)
		at := now.Add(-1 * time.Hour)
		got := StampTick(current, now, at)
		want := current
		if got != want {
			t.Errorf("StampTick = %d, want %d (clamped delta of 0)", got, want)
		}
	})
}

func TestDurationToMicroBeat(t *testing.T) {
	beatMicros := int64(500_000) // 120 BPM
	got := DurationToMicroBeat(500*time.Millisecond, beatMicros)
	want := MicroBeat(MicroBeatsPerBeat)
	if got != want {
		t.Errorf("DurationToMicroBeat = %d, want %d (exactly one beat)", got, want)
	}

	if got := DurationToMicroBeat(time.Second, 0); got != 0 {
		t.Errorf("DurationToMicroBeat with zero beatMicros = %d, want 0", got)
	}
}

func TestControlRampSamplesMatchesHundredHertz(t *testing.T) {
	want := audio.SampleRate / ControlUpdateFrequency
	if ControlRampSamples != want {
		t.Errorf("ControlRampSamples = %d, want %d", ControlRampSamples, want)
	}
}
