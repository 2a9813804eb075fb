// Package tick defines the two time units the scheduler and DSP loop
// bridge: SampleTick (samples since engine start) and MicroBeat (beats
// times 1e6, the Runtime's authoritative unit).
package tick

import (
	"time"

	"github.com/kestrelaudio/corelx/internal/audio"
)

// Sample is a monotonic count of samples since engine start.
type Sample int64

// MicroBeat is a count of beats times 1e6.
type MicroBeat int64

const (
	// MicroBeatsPerBeat is the fixed-point scale of MicroBeat.
	MicroBeatsPerBeat MicroBeat = 1_000_000

	// ControlUpdateFrequency is the rate, in Hz, at which Knob ramps are
	// retargeted.
	ControlUpdateFrequency = 100

	// BlockProcessingDelay is the fixed look-ahead, in blocks, added to
	// every MIDI event's stamped tick.
	BlockProcessingDelay = 7

	// ChunkSize is the sub-block granularity external-MIDI dispatch uses
	// to schedule bytes onto real hardware.
	ChunkSize = 128
)

// ControlRampSamples is the number of samples a Knob ramp spans:
// sample_rate / control_update_frequency.
const ControlRampSamples = audio.SampleRate / ControlUpdateFrequency

// FromDuration converts a wall-clock duration into samples at the
// engine's fixed sample rate.
func FromDuration(d time.Duration) Sample {
	return Sample(d.Seconds() * audio.SampleRate)
}

// ToDuration converts a sample count into a wall-clock duration.
func (s Sample) ToDuration() time.Duration {
	return time.Duration(float64(s) / audio.SampleRate * float64(time.Second))
}

// LookaheadTicks is the fixed number of ticks added to every stamped
// event: BlockProcessingDelay blocks worth of samples.
const LookaheadTicks = Sample(BlockProcessingDelay * audio.BlockSize)

// StampTick computes the tick to assign a MIDI event whose wall-clock
// instant is "at", relative to the DSP loop's current tick and wall-clock
// "now": project the event's wall-clock delta onto samples, add the
// look-ahead, clamp to non-negative, and add to the current tick.
func StampTick(currentTick Sample, now, at time.Time) Sample {
	deltaTicks := FromDuration(at.Sub(now))
	deltaTicks += LookaheadTicks
	if deltaTicks < 0 {
		deltaTicks = 0
	}
	return currentTick + deltaTicks
}

// DurationToMicroBeat converts a wall-clock duration to µbeats given the
// current beat length in µs.
func DurationToMicroBeat(d time.Duration, beatMicros int64) MicroBeat {
	if beatMicros <= 0 {
		return 0
	}
	return MicroBeat(d.Microseconds() * int64(MicroBeatsPerBeat) / beatMicros)
}
