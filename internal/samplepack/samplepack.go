// Package samplepack loads sample packs (directories of WAV files) into
// memory and resolves them by pack/name for the sampler instrument.
//
// Grounded on the teacher's general file-layout convention (a directory
// tree loaded eagerly at startup) and on github.com/go-audio/wav, the
// WAV decoder the retrieval pack's audio-adjacent repos
// (tphakala-birdnet-go, viamrobotics-rdk) depend on for the same job:
// decoding PCM/float WAV files into in-memory sample buffers.
package samplepack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-audio/wav"
)

// Sample is one decoded audio file: equal-length float32 frames for
// each channel, at its own native sample rate (the sampler resamples
// implicitly via its rate Parameter rather than this loader).
type Sample struct {
	Pack   string
	Name   string
	Left   []float32
	Right  []float32
	Rate   int
}

// Frames returns the sample's length in frames.
func (s *Sample) Frames() int {
	return len(s.Left)
}

// Manager holds every loaded pack, keyed by pack name then sample name.
type Manager struct {
	mu    sync.RWMutex
	packs map[string]map[string]*Sample
}

// NewManager builds an empty sample manager.
func NewManager() *Manager {
	return &Manager{packs: make(map[string]map[string]*Sample)}
}

// LoadPack scans dir for *.wav files and registers each as a sample
// under packName, named after its file stem. Returns the number of
// samples loaded.
func (m *Manager) LoadPack(packName, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("samplepack: read pack dir %q: %w", dir, err)
	}

	loaded := make(map[string]*Sample)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sample, err := decodeWav(packName, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())), path)
		if err != nil {
			return 0, fmt.Errorf("samplepack: decode %q: %w", path, err)
		}
		loaded[sample.Name] = sample
	}

	m.mu.Lock()
	m.packs[packName] = loaded
	m.mu.Unlock()
	return len(loaded), nil
}

func decodeWav(pack, name, path string) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode PCM: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels
	left := make([]float32, frames)
	right := make([]float32, frames)

	maxVal := float32(int(1) << uint(buf.SourceBitDepth-1))
	if buf.SourceBitDepth == 0 {
		maxVal = 1 << 15
	}

	for i := 0; i < frames; i++ {
		l := float32(buf.Data[i*channels]) / maxVal
		r := l
		if channels > 1 {
			r = float32(buf.Data[i*channels+1]) / maxVal
		}
		left[i] = l
		right[i] = r
	}

	return &Sample{
		Pack: pack, Name: name,
		Left: left, Right: right,
		Rate: buf.Format.SampleRate,
	}, nil
}

// GetSample resolves a sample by pack and name. Returns ok=false if
// either the pack or the sample within it is unknown — the sampler
// treats this as a configuration error and ignores the SamplerPlay
// command.
func (m *Manager) GetSample(pack, name string) (*Sample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.packs[pack]
	if !ok {
		return nil, false
	}
	s, ok := p[name]
	return s, ok
}
