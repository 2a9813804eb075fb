// Package audioio implements the core's two SampleConsumers: a
// lock-free ring feeding a real audio device via oto/v3, and a WAV file
// recorder built on go-audio.
package audioio

import "sync/atomic"

// Ring is a single-producer/single-consumer, allocation-free byte ring
// buffer. The DSP thread is the sole producer (Write); the audio
// device's pull callback is the sole consumer (Read). Adapted from the
// teacher's pkg/dsp/buffer.go allocation-free discipline, generalized
// from float32 slice ops to a fixed-capacity byte ring since the oto
// player pulls interleaved PCM bytes rather than float32 blocks.
type Ring struct {
	buf        []byte
	size       int
	writePos   atomic.Uint64
	readPos    atomic.Uint64
}

// NewRing allocates a ring with room for capacity bytes.
func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]byte, capacity), size: capacity}
}

// Write copies as much of p into the ring as there is free space,
// without blocking, and returns the number of bytes written. Excess
// bytes are dropped — an overrun means the consumer fell behind, which
// corelx treats as the output device's problem to recover from, not
// the DSP thread's to wait on.
func (r *Ring) Write(p []byte) int {
	writePos := r.writePos.Load()
	readPos := r.readPos.Load()
	free := r.size - int(writePos-readPos)
	n := len(p)
	if n > free {
		n = free
	}
	for i := 0; i < n; i++ {
		r.buf[(int(writePos)+i)%r.size] = p[i]
	}
	r.writePos.Store(writePos + uint64(n))
	return n
}

// Read copies as many available bytes into p as there are, zero-filling
// the remainder (silence) when the ring is underrun, and returns the
// number of real bytes copied.
func (r *Ring) Read(p []byte) int {
	readPos := r.readPos.Load()
	writePos := r.writePos.Load()
	avail := int(writePos - readPos)
	n := len(p)
	if n > avail {
		n = avail
	}
	for i := 0; i < n; i++ {
		p[i] = r.buf[(int(readPos)+i)%r.size]
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	r.readPos.Store(readPos + uint64(n))
	return n
}

// Buffered returns the number of unread bytes currently in the ring.
func (r *Ring) Buffered() int {
	return int(r.writePos.Load() - r.readPos.Load())
}
