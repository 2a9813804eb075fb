// Package audio defines the stereo block format shared by every component
// of the core: the engine, tracks, instruments, and effects all trade
// *Buffer values rather than raw slices.
package audio

const (
	// SampleRate is the engine's fixed sample rate in Hz.
	SampleRate = 48000
	// NumChannels is the number of channels in the master stream.
	NumChannels = 2
	// BlockSize is the number of stereo frames processed per DSP block.
	BlockSize = 512
)

// BlockDurationNanos is the wall-clock duration of one block at
// SampleRate, in whole nanoseconds.
const BlockDurationNanos = int64(BlockSize) * 1_000_000_000 / SampleRate

// Buffer is a stereo block of float32 samples. Left and Right always have
// equal length. Buffers are reused block to block; Reset zeroes them
// in place rather than reallocating.
type Buffer struct {
	Left  []float32
	Right []float32
}

// New allocates a buffer of the given frame count (both channels).
func New(frames int) *Buffer {
	return &Buffer{
		Left:  make([]float32, frames),
		Right: make([]float32, frames),
	}
}

// Reset zeroes both channels without reallocating.
func (b *Buffer) Reset() {
	clear(b.Left)
	clear(b.Right)
}

// Len returns the frame count (both channels share this length).
func (b *Buffer) Len() int {
	return len(b.Left)
}

// AddScaled additively mixes src*scale into the receiver, per-channel.
// No allocation.
func (b *Buffer) AddScaled(src *Buffer, leftGain, rightGain float32) {
	n := b.Len()
	if sl := src.Len(); sl < n {
		n = sl
	}
	for i := 0; i < n; i++ {
		b.Left[i] += src.Left[i] * leftGain
		b.Right[i] += src.Right[i] * rightGain
	}
}

// Add additively mixes src into the receiver at unity gain.
func (b *Buffer) Add(src *Buffer) {
	b.AddScaled(src, 1, 1)
}
