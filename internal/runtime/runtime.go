// Package runtime implements the beat clock: the scheduler that
// translates musical beats to wall-clock instants, drives user
// callbacks on the beat, applies live code updates, and emits
// timestamped MIDI events into the engine.
//
// Grounded on the teacher's pkg/framework/param parameter-smoothing
// loop for the "wait until due, then act" shape, generalized here to a
// min-heap of scheduled callbacks rather than a single ramp target.
package runtime

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrelaudio/corelx/internal/logging"
	corelxmidi "github.com/kestrelaudio/corelx/internal/midi"
)

// ErrSystemExit is returned by a CodeEvaluator or a scheduled callback
// to request a graceful runtime shutdown.
var ErrSystemExit = errors.New("runtime: system exit requested")

// Engine is the narrow surface the Runtime pushes timestamped MIDI
// events onto; internal/engine.Engine satisfies it.
type Engine interface {
	PushMidiEvent(evt corelxmidi.EventAt)
}

// CodeEvaluator evaluates one pending code update. The embedded
// scripting interpreter itself is out of scope for this core
// here; callers inject whatever language front-end they run.
type CodeEvaluator interface {
	Eval(code string) error
	PostEvalHook()
}

// NoopEvaluator discards every code update; used for tests and for
// corelxd's headless mode (no live-coding front end attached).
type NoopEvaluator struct{}

func (NoopEvaluator) Eval(string) error  { return nil }
func (NoopEvaluator) PostEvalHook()      {}

// Callback is a user-scheduled action, invoked at its due beat.
// Returning ErrSystemExit stops the runtime loop gracefully.
type Callback func(r *Runtime) error

type scheduleEntry struct {
	atBeat MicroBeat
	id     uint64
	fn     Callback
}

// scheduleHeap orders entries by (at_beat, id) — earliest beat first,
// ties broken by insertion order.
type scheduleHeap []*scheduleEntry

func (h scheduleHeap) Len() int { return len(h) }
func (h scheduleHeap) Less(i, j int) bool {
	if h[i].atBeat != h[j].atBeat {
		return h[i].atBeat < h[j].atBeat
	}
	return h[i].id < h[j].id
}
func (h scheduleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *scheduleHeap) Push(x any)   { *h = append(*h, x.(*scheduleEntry)) }
func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// MicroBeat is a beat count scaled by 1e6, matching
// internal/tick.MicroBeat's fixed-point convention.
type MicroBeat = int64

const microBeatsPerBeat MicroBeat = 1_000_000

// Runtime owns the beat clock, the schedule, and the pending code
// update slot.
type Runtime struct {
	mu sync.Mutex

	bpm         float64
	beatMicros  int64
	currentTime time.Time
	currentBeat MicroBeat

	schedule scheduleHeap
	nextID   uint64

	pendingCode   atomic.Pointer[string]
	wakeCh        chan struct{}
	stopCh        chan struct{}
	doneCh        chan struct{}

	engine    Engine
	evaluator CodeEvaluator
	logger    *logging.Logger
}

// New builds a Runtime at the given initial BPM, pushing emitted MIDI
// onto engine and evaluating code updates with evaluator.
func New(engine Engine, evaluator CodeEvaluator, bpm float64, logger *logging.Logger) *Runtime {
	if evaluator == nil {
		evaluator = NoopEvaluator{}
	}
	r := &Runtime{
		engine:    engine,
		evaluator: evaluator,
		logger:    logger,
		wakeCh:    make(chan struct{}, 1),
	}
	r.SetBPM(bpm)
	return r
}

func beatMicrosFor(bpm float64) int64 {
	if bpm <= 0 {
		return 500_000 // 120 BPM fallback
	}
	return int64(60_000_000 / bpm)
}

// SetBPM updates the beat clock's rate; future beat→time conversions
// use the new rate. The current beat position is not reset.
func (r *Runtime) SetBPM(bpm float64) {
	r.mu.Lock()
	r.bpm = bpm
	r.beatMicros = beatMicrosFor(bpm)
	r.mu.Unlock()
}

// GetBPM returns the current tempo.
func (r *Runtime) GetBPM() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bpm
}

// GetCurrentBeat returns the runtime's current beat position, in
// fractional beats.
func (r *Runtime) GetCurrentBeat() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.currentBeat) / float64(microBeatsPerBeat)
}

// beatToInstant converts a µbeat into a wall-clock instant, relative to
// the runtime's current_time/current_beat anchor.
// Callers must hold r.mu.
func (r *Runtime) beatToInstant(at MicroBeat) time.Time {
	delta := at - r.currentBeat
	if delta < 0 {
		delta = 0
	}
	deltaMicros := delta * r.beatMicros / microBeatsPerBeat
	return r.currentTime.Add(time.Duration(deltaMicros) * time.Microsecond)
}

// durationToMicroBeat converts a wall-clock duration into µbeats at the
// current tempo. Callers must hold r.mu.
func (r *Runtime) durationToMicroBeat(d time.Duration) MicroBeat {
	if r.beatMicros <= 0 {
		return 0
	}
	return d.Microseconds() * microBeatsPerBeat / r.beatMicros
}

// Schedule inserts fn to run at beat atBeat, tie-broken by insertion
// order among entries sharing a beat.
func (r *Runtime) Schedule(atBeat float64, fn Callback) {
	r.mu.Lock()
	r.nextID++
	heap.Push(&r.schedule, &scheduleEntry{
		atBeat: MicroBeat(atBeat * float64(microBeatsPerBeat)),
		id:     r.nextID,
		fn:     fn,
	})
	r.mu.Unlock()
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

// PushCodeUpdate installs code as the single pending update, discarding
// any update that has not yet been picked up.
func (r *Runtime) PushCodeUpdate(code string) {
	r.pendingCode.Store(&code)
	select {
	case r.wakeCh <- struct{}{}:
	default:
	}
}

func (r *Runtime) takeCodeUpdate() (string, bool) {
	p := r.pendingCode.Swap(nil)
	if p == nil {
		return "", false
	}
	return *p, true
}

// MidiNoteOn builds and pushes a note-on event timestamped at the
// runtime's current logical instant.
func (r *Runtime) MidiNoteOn(track string, channel, key, velocity uint8) {
	r.pushMidi(track, corelxmidi.NoteOn(channel, key, velocity))
}

// MidiNoteOff builds and pushes a note-off event.
func (r *Runtime) MidiNoteOff(track string, channel, key uint8) {
	r.pushMidi(track, corelxmidi.NoteOff(channel, key, 0))
}

// MidiCC builds and pushes a control-change event.
func (r *Runtime) MidiCC(track string, channel, controller, value uint8) {
	r.pushMidi(track, corelxmidi.ControlChange(channel, controller, value))
}

// MidiSysex builds and pushes a proprietary sysex payload of the given
// kind addressed to track. payload is marshaled to JSON by
// BuildSysex, so callers pass the typed struct (e.g.
// midi.UpdateControlsPayload), not pre-encoded bytes.
func (r *Runtime) MidiSysex(track string, kind corelxmidi.SysexKind, payload any) error {
	raw, err := corelxmidi.BuildSysex(kind, payload)
	if err != nil {
		return err
	}
	r.pushMidi(track, raw)
	return nil
}

func (r *Runtime) pushMidi(track string, msg corelxmidi.Event) {
	r.mu.Lock()
	at := r.currentTime
	r.mu.Unlock()
	r.engine.PushMidiEvent(corelxmidi.NewEventAt(track, msg, at))
}

// Stop requests the runtime loop exit at its next wakeup and blocks
// until it has.
func (r *Runtime) Stop() {
	if r.stopCh == nil {
		return
	}
	close(r.stopCh)
	<-r.doneCh
}

// Run seeds a self-rescheduling once-per-beat tick and drives the
// runtime loop until Stop is called or a callback/evaluation requests
// a graceful exit.
func (r *Runtime) Run() {
	r.mu.Lock()
	r.currentTime = time.Now()
	r.currentBeat = 0
	r.mu.Unlock()
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	var beatTick Callback
	beatTick = func(rt *Runtime) error {
		rt.Schedule(rt.GetCurrentBeat()+1, beatTick)
		return nil
	}
	r.Schedule(1, beatTick)

	defer close(r.doneCh)
	for {
		r.mu.Lock()
		var due time.Time
		var next *scheduleEntry
		if len(r.schedule) > 0 {
			next = r.schedule[0]
			due = r.beatToInstant(next.atBeat)
		} else {
			due = time.Now().Add(time.Hour)
		}
		r.mu.Unlock()

		timer := time.NewTimer(time.Until(due))
		select {
		case <-r.stopCh:
			timer.Stop()
			return
		case <-r.wakeCh:
			timer.Stop()
		case <-timer.C:
		}

		code, hasCode := r.takeCodeUpdate()

		if next != nil && !time.Now().Before(due) {
			r.mu.Lock()
			r.currentTime = due
			r.currentBeat = next.atBeat
			heap.Pop(&r.schedule)
			r.mu.Unlock()

			if err := next.fn(r); err != nil {
				if errors.Is(err, ErrSystemExit) {
					return
				}
				if r.logger != nil {
					r.logger.Warnf("runtime: callback error: %v", err)
				}
			}
		}

		if hasCode {
			r.mu.Lock()
			elapsed := r.durationToMicroBeat(time.Since(r.currentTime))
			r.currentBeat += elapsed
			r.mu.Unlock()

			if err := r.evaluator.Eval(code); err != nil {
				if errors.Is(err, ErrSystemExit) {
					return
				}
				if r.logger != nil {
					r.logger.Warnf("runtime: eval error: %v", err)
				}
			}
			r.evaluator.PostEvalHook()
		}
	}
}
