// Package externalmidi implements the external-MIDI instrument
// variant: it does not render audio itself, but buffers timed events
// into a MidiStack and dispatches them to hardware at sub-block
// granularity, chunked at ChunkSize samples.
//
// Grounded on the teacher's absence of an external-MIDI dispatcher (the
// teacher is a plugin, not a host) and on the retrieval pack's MIDI
// sequencers (grahamseamans-go-sequence, james-see-synthtribe2midi) for
// the gitlab.com/gomidi/midi/v2 send pattern, adapted into
// chunk-granularity dispatch performed inside Render.
package externalmidi

import (
	"sync"
	"time"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/tick"
)

// ChunkSize is the external-MIDI dispatch granularity in samples.
const ChunkSize = 128

// Sender is the narrow capability this instrument dispatches bytes
// through; a real deployment backs it with a gitlab.com/gomidi/midi/v2
// driver output port, tests back it with an in-memory recorder.
type Sender interface {
	Send(msg midi.Event) error
}

// ExternalMidi buffers timed events into a MidiStack and, inside each
// Render call, walks the block in ChunkSize-sample steps, dispatching
// every event due by the end of each step to its Sender. There is no
// worker goroutine and no wall-clock wait between steps: all of a
// block's due events are sent, in chunk order, when the block renders.
// It never writes to the track's audio buffer.
type ExternalMidi struct {
	sender Sender
	stack  *midi.Stack

	mu        sync.Mutex
	startTime time.Time
}

// New builds an ExternalMidi instrument dispatching through sender.
func New(sender Sender) *ExternalMidi {
	return &ExternalMidi{sender: sender, stack: midi.NewStack()}
}

func (e *ExternalMidi) Kind() string { return "external_midi" }

func (e *ExternalMidi) Init() error {
	e.mu.Lock()
	e.startTime = time.Now()
	e.mu.Unlock()
	return nil
}

func (e *ExternalMidi) CanFastUpdate(other instrument.Instrument) bool {
	_, ok := other.(*ExternalMidi)
	return ok
}

func (e *ExternalMidi) FastUpdate(other instrument.Instrument) {
	o := other.(*ExternalMidi)
	e.sender = o.sender
}

func (e *ExternalMidi) Stop() {}

// Render pushes this block's events into the stack, then dispatches, in
// ChunkSize-sample sub-blocks, every event whose stamped tick has come
// due. It never touches buf: external MIDI produces no local audio.
func (e *ExternalMidi) Render(startTick tick.Sample, events []midi.EventAt, buf *audio.Buffer) {
	for _, ev := range events {
		e.stack.Push(ev)
	}

	for chunkStart := 0; chunkStart < audio.BlockSize; chunkStart += ChunkSize {
		chunkTick := startTick + tick.Sample(chunkStart+ChunkSize)
		due := e.stack.EventsAtTick(chunkTick)
		for _, ev := range due {
			_ = e.sender.Send(ev.Msg) // resource error: never fatal on the render path
		}
	}
}
