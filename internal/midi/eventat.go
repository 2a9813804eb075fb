package midi

import (
	"time"

	"github.com/kestrelaudio/corelx/internal/tick"
)

// EventAt is a MIDI message tagged with a wall-clock instant and a
// destination track name. It initially holds only At; the engine stamps
// Tick at block boundary using the look-ahead. Once Tick is set it is
// always >= the block's start tick.
type EventAt struct {
	Track string
	Msg   Event
	At    time.Time
	Tick  *tick.Sample
}

// NewEventAt builds an unstamped event destined for track.
func NewEventAt(track string, msg Event, at time.Time) EventAt {
	return EventAt{Track: track, Msg: msg, At: at}
}

// Stamp assigns a sample tick to the event, given the DSP loop's current
// tick and wall-clock now. It is idempotent only in the sense that
// re-stamping overwrites any previous tick; callers stamp each event
// exactly once, at the block boundary that drains it.
func (e *EventAt) Stamp(currentTick tick.Sample, now time.Time) {
	t := tick.StampTick(currentTick, now, e.At)
	e.Tick = &t
}

// Stamped reports whether Stamp has been called.
func (e EventAt) Stamped() bool {
	return e.Tick != nil
}
