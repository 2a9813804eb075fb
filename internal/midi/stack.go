package midi

import (
	"sync"

	"github.com/kestrelaudio/corelx/internal/tick"
)

// Stack is an append-only inbox with a tick-indexed drain, used inside
// instruments (notably ExternalMidi) to buffer events during rendering.
// EventsAtTick(T) returns, in arrival order, every event whose tick is
// <= T that has not already been drained, and removes them from the
// stack — a second call with the same T returns nothing.
//
// Adapted from the teacher's pkg/midi/queue.go range-query design,
// generalized from a sorted-range read to a destructive drain-by-tick.
type Stack struct {
	mu     sync.Mutex
	events []EventAt
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{events: make([]EventAt, 0, 32)}
}

// Push appends a stamped event. Events need not arrive tick-sorted;
// EventsAtTick performs the selection each call.
func (s *Stack) Push(e EventAt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// EventsAtTick drains and returns, in arrival order, every event whose
// Tick is <= upTo. Undrained events (Tick > upTo, or not yet stamped)
// remain in the stack.
func (s *Stack) EventsAtTick(upTo tick.Sample) []EventAt {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return nil
	}

	var due []EventAt
	remaining := s.events[:0:0]
	for _, e := range s.events {
		if e.Tick != nil && *e.Tick <= upTo {
			due = append(due, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	s.events = remaining
	return due
}

// Len reports the number of events still pending in the stack.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
