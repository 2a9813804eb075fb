package audioio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/kestrelaudio/corelx/internal/audio"
)

// bitDepth and wavFormatIEEEFloat mark the file as 32-bit IEEE-float
// PCM (WAV format code 3), matching the engine's native sample
// representation end to end.
const (
	bitDepth           = 32
	wavFormatIEEEFloat = 3
)

// WavRecorder is a Consumer that writes every pushed block to a WAV
// file on disk, 32-bit float PCM stereo at the engine's fixed sample
// rate. Grounded on the retrieval pack's go-audio/wav + go-audio/audio
// dependency pairing — encoder usage follows go-audio/wav's documented
// Encoder.Write(*audio.IntBuffer) contract; since that contract only
// accepts integer sample slots, each float32 sample is bit-packed into
// an int32 via math.Float32bits rather than quantized, so no precision
// is lost relative to the engine's native format.
type WavRecorder struct {
	mu      sync.Mutex
	dir     string
	file    *os.File
	encoder *wav.Encoder
	intBuf  *goaudio.IntBuffer
}

// NewWavRecorder builds a recorder that writes files under dir,
// creating it (and parents) on first use.
func NewWavRecorder(dir string) *WavRecorder {
	return &WavRecorder{dir: dir}
}

// Start opens a new timestamped WAV file and begins accepting Push
// calls, creating the recording directory (and parents) with
// os.MkdirAll if it does not already exist.
func (w *WavRecorder) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("audioio: create recording directory: %w", err)
	}
	name := fmt.Sprintf("corelx-%s.wav", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audioio: create wav file: %w", err)
	}

	w.file = f
	w.encoder = wav.NewEncoder(f, audio.SampleRate, bitDepth, audio.NumChannels, wavFormatIEEEFloat)
	w.intBuf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{SampleRate: audio.SampleRate, NumChannels: audio.NumChannels},
		Data:           make([]int, 0, audio.BlockSize*audio.NumChannels),
		SourceBitDepth: bitDepth,
	}
	return nil
}

// Push interleaves and writes one block to the open WAV file. A nil
// encoder (recording not started) makes Push a silent no-op, so a
// Consumer's resource errors never reach the DSP thread.
func (w *WavRecorder) Push(buf *audio.Buffer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.encoder == nil {
		return nil
	}

	w.intBuf.Data = w.intBuf.Data[:0]
	for i := range buf.Left {
		w.intBuf.Data = append(w.intBuf.Data,
			int(int32(math.Float32bits(clampUnit(buf.Left[i])))),
			int(int32(math.Float32bits(clampUnit(buf.Right[i])))),
		)
	}
	return w.encoder.Write(w.intBuf)
}

// Stop flushes and closes the current WAV file, if any — a graceful
// exit must flush an in-progress recording.
func (w *WavRecorder) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.encoder == nil {
		return nil
	}
	err := w.encoder.Close()
	closeErr := w.file.Close()
	w.encoder = nil
	w.file = nil
	if err != nil {
		return err
	}
	return closeErr
}
