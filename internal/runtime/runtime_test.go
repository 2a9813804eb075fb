package runtime

import (
	"sync"
	"testing"
	"time"

	corelxmidi "github.com/kestrelaudio/corelx/internal/midi"
)

type fakeEngine struct {
	mu     sync.Mutex
	events []corelxmidi.EventAt
}

func (f *fakeEngine) PushMidiEvent(evt corelxmidi.EventAt) {
	f.mu.Lock()
	f.events = append(f.events, evt)
	f.mu.Unlock()
}

func (f *fakeEngine) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestBeatMicrosForFallsBackAtNonPositiveBPM(t *testing.T) {
	if got := beatMicrosFor(0); got != 500_000 {
		t.Errorf("beatMicrosFor(0) = %d, want 500000 (120 BPM fallback)", got)
	}
	if got := beatMicrosFor(120); got != 500_000 {
		t.Errorf("beatMicrosFor(120) = %d, want 500000", got)
	}
}

func TestSetBPMUpdatesGetBPM(t *testing.T) {
	r := New(&fakeEngine{}, nil, 120, nil)
	r.SetBPM(140)
	if got := r.GetBPM(); got != 140 {
		t.Errorf("GetBPM = %f, want 140", got)
	}
}

func TestMidiNoteOnPushesEventToEngine(t *testing.T) {
	eng := &fakeEngine{}
	r := New(eng, nil, 120, nil)
	r.MidiNoteOn("drums", 0, 36, 100)

	if eng.count() != 1 {
		t.Fatalf("engine received %d events, want 1", eng.count())
	}
}

func TestMidiSysexMarshalsTypedPayload(t *testing.T) {
	eng := &fakeEngine{}
	r := New(eng, nil, 120, nil)
	err := r.MidiSysex(corelxmidi.ControlsTrack, corelxmidi.SysexUpdateControls,
		corelxmidi.UpdateControlsPayload{Knobs: map[string]float64{"cutoff": 0.5}})
	if err != nil {
		t.Fatalf("MidiSysex: %v", err)
	}

	eng.mu.Lock()
	evt := eng.events[0]
	eng.mu.Unlock()

	kind, js, ok := corelxmidi.DecodeSysex(evt.Msg)
	if !ok || kind != corelxmidi.SysexUpdateControls {
		t.Fatalf("decoded sysex kind=%d ok=%v, want SysexUpdateControls/true", kind, ok)
	}
	payload, err := corelxmidi.ParseUpdateControls(js)
	if err != nil {
		t.Fatalf("ParseUpdateControls: %v", err)
	}
	if payload.Knobs["cutoff"] != 0.5 {
		t.Errorf("Knobs[cutoff] = %f, want 0.5", payload.Knobs["cutoff"])
	}
}

// TestRunAdvancesBeatsAtHighTempo mirrors a fast-tempo scheduling
// scenario: at 600 BPM (100ms/beat) a handful of self-rescheduling
// beat ticks should fire within half a second of wall-clock time.
func TestRunAdvancesBeatsAtHighTempo(t *testing.T) {
	eng := &fakeEngine{}
	r := New(eng, NoopEvaluator{}, 600, nil)

	var mu sync.Mutex
	var fires int
	r.Schedule(1, func(rt *Runtime) error {
		mu.Lock()
		fires++
		mu.Unlock()
		rt.Schedule(rt.GetCurrentBeat()+1, func(rt2 *Runtime) error {
			mu.Lock()
			fires++
			mu.Unlock()
			return nil
		})
		return nil
	})

	go r.Run()
	time.Sleep(500 * time.Millisecond)
	r.Stop()

	mu.Lock()
	got := fires
	mu.Unlock()
	if got < 2 {
		t.Errorf("expected at least 2 scheduled callbacks to fire within 500ms at 600 BPM, got %d", got)
	}
}

// TestRunStopsGracefullyOnSystemExit verifies a scheduled callback
// returning ErrSystemExit ends the runtime loop without the caller
// having to call Stop.
func TestRunStopsGracefullyOnSystemExit(t *testing.T) {
	eng := &fakeEngine{}
	r := New(eng, NoopEvaluator{}, 120, nil)

	r.Schedule(1, func(rt *Runtime) error {
		return ErrSystemExit
	})

	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after a callback requested ErrSystemExit")
	}
}

func TestPushCodeUpdateOverwritesPending(t *testing.T) {
	r := New(&fakeEngine{}, nil, 120, nil)
	r.PushCodeUpdate("first")
	r.PushCodeUpdate("second")

	code, ok := r.takeCodeUpdate()
	if !ok {
		t.Fatal("expected a pending code update")
	}
	if code != "second" {
		t.Errorf("takeCodeUpdate = %q, want %q (latest overwrites)", code, "second")
	}
	if _, ok := r.takeCodeUpdate(); ok {
		t.Error("takeCodeUpdate should be empty after being taken once")
	}
}
