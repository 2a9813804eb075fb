package envelope

import (
	"math"
	"testing"

	"github.com/kestrelaudio/corelx/internal/audio"
)

func TestAttackRampsLinearlyToOne(t *testing.T) {
	e := New(10, 0, 0, 1.0) // 10ms attack, no decay, sustain at 1
	e.NoteOn()

	attackSamples := int(10 * audio.SampleRate / 1000)
	var last float64
	for i := 0; i < attackSamples; i++ {
		v := e.Tick()
		if v < last {
			t.Fatalf("attack value decreased at sample %d: %f -> %f", i, last, v)
		}
		last = v
	}
	if math.Abs(e.Value()-1.0) > 1e-6 {
		t.Errorf("value after attack = %f, want 1.0", e.Value())
	}
	if e.Phase() != Decay {
		t.Errorf("phase after attack completes = %v, want Decay", e.Phase())
	}
}

func TestFullADSRCycle(t *testing.T) {
	e := New(5, 5, 5, 0.5)
	e.NoteOn()

	for e.Phase() != Sustain {
		e.Tick()
	}
	if math.Abs(e.Value()-0.5) > 1e-6 {
		t.Errorf("sustain value = %f, want 0.5", e.Value())
	}

	// Sustain holds indefinitely until NoteOff.
	for i := 0; i < 1000; i++ {
		e.Tick()
	}
	if e.Phase() != Sustain {
		t.Errorf("phase after holding = %v, want Sustain", e.Phase())
	}

	e.NoteOff()
	if e.Phase() != Release {
		t.Fatalf("phase after NoteOff = %v, want Release", e.Phase())
	}
	for !e.Finished() {
		v := e.Tick()
		if v < 0 {
			t.Fatalf("envelope value went negative: %f", v)
		}
	}
	if math.Abs(e.Value()) > 1e-9 {
		t.Errorf("value after Finished = %f, want 0", e.Value())
	}
}

func TestNoteOffMidAttackReleasesFromCurrentValue(t *testing.T) {
	e := New(1000, 0, 0, 1.0)
	e.NoteOn()
	for i := 0; i < 100; i++ {
		e.Tick()
	}
	mid := e.Value()
	if mid <= 0 || mid >= 1.0 {
		t.Fatalf("expected a partial attack value, got %f", mid)
	}

	e.NoteOff()
	if e.Phase() != Release {
		t.Fatalf("phase = %v, want Release", e.Phase())
	}
	next := e.Tick()
	if next >= mid {
		t.Errorf("value should decrease immediately on release: %f -> %f", mid, next)
	}
}

func TestNewFixedIsSymmetricAttackRelease(t *testing.T) {
	e := NewFixed(1)
	e.NoteOn()
	for e.Phase() == Attack {
		e.Tick()
	}
	if e.Phase() != Sustain {
		t.Fatalf("phase after attack = %v, want Sustain (no decay stage)", e.Phase())
	}
	if math.Abs(e.Value()-1.0) > 1e-6 {
		t.Errorf("value after attack = %f, want 1.0", e.Value())
	}
}

func TestZeroDurationPhaseCompletesImmediately(t *testing.T) {
	e := New(0, 0, 0, 1.0)
	e.NoteOn()
	v := e.Tick()
	if v != 1.0 {
		t.Errorf("first tick with zero attack = %f, want 1.0", v)
	}
}
