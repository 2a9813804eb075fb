package audioio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"

	"github.com/kestrelaudio/corelx/internal/audio"
)

// ringCapacitySeconds sizes the output ring generously relative to one
// DSP block so a momentary scheduling hiccup on either side doesn't
// immediately underrun or drop samples.
const ringCapacitySeconds = 0.5

// bytesPerFrame is one stereo frame of interleaved 32-bit float PCM:
// 4 bytes per channel, audio.NumChannels channels.
const bytesPerFrame = 4 * audio.NumChannels

// OtoOutput is a Consumer/SampleConsumer that pushes finished blocks
// into a ring buffer an oto/v3 player drains on its own pull thread.
// Grounded on the pack's ebiten-family repos (cbegin-mmlfm-go,
// zurustar-son-et) that carry github.com/ebitengine/oto/v3 as their
// audio backend, though none calls its API directly (oto arrives there
// transitively through ebiten's audio package) — this wrapper is
// written directly against oto/v3's public Context/Player API.
type OtoOutput struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *Ring
	pcm    []byte // interleave scratch, reused across Push calls
}

// ringReader adapts *Ring to io.Reader for oto.Context.NewPlayer, which
// pulls PCM bytes on its own goroutine.
type ringReader struct {
	ring *Ring
}

func (rr ringReader) Read(p []byte) (int, error) {
	n := rr.ring.Read(p)
	if n < len(p) {
		n = len(p) // silence-pad rather than report a short read
	}
	return n, nil
}

// NewOtoOutput initializes an oto context at the engine's fixed sample
// rate, carrying interleaved 32-bit float PCM end to end, and starts a
// player pulling from a freshly allocated ring.
func NewOtoOutput() (*OtoOutput, error) {
	options := &oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.NumChannels,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, err
	}
	<-ready

	capacity := int(float64(audio.SampleRate) * ringCapacitySeconds * float64(bytesPerFrame))
	ring := NewRing(capacity)

	player := ctx.NewPlayer(ringReader{ring: ring})
	player.SetBufferSize(audio.BlockSize * bytesPerFrame)
	player.Play()

	return &OtoOutput{ctx: ctx, player: player, ring: ring}, nil
}

// Push interleaves buf's stereo float32 samples into little-endian
// 32-bit float PCM and writes them into the output ring. Never blocks;
// an overrun drops the tail of this block rather than stalling the DSP
// thread.
func (o *OtoOutput) Push(buf *audio.Buffer) error {
	frames := buf.Len()
	need := frames * bytesPerFrame
	if cap(o.pcm) < need {
		o.pcm = make([]byte, need)
	}
	pcm := o.pcm[:need]
	for i := 0; i < frames; i++ {
		l := clampUnit(buf.Left[i])
		r := clampUnit(buf.Right[i])
		binary.LittleEndian.PutUint32(pcm[i*bytesPerFrame:], math.Float32bits(l))
		binary.LittleEndian.PutUint32(pcm[i*bytesPerFrame+4:], math.Float32bits(r))
	}
	o.ring.Write(pcm)
	return nil
}

// clampUnit clamps a sample to [-1, 1] before it reaches the device,
// independent of the wire format's bit depth.
func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Close stops playback and releases the oto player. Idempotent.
func (o *OtoOutput) Close() error {
	if o.player != nil {
		_ = o.player.Close()
	}
	return nil
}

var _ io.Reader = ringReader{}
