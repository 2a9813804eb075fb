package samplepack

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWav(t *testing.T, path string, frames []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{SampleRate: 44100, NumChannels: 1},
		Data:           frames,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestLoadPackDecodesWavFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestWav(t, filepath.Join(dir, "kick.wav"), []int{0, 16384, -16384, 0})
	writeTestWav(t, filepath.Join(dir, "snare.wav"), []int{100, 200, 300})

	mgr := NewManager()
	n, err := mgr.LoadPack("drums", dir)
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if n != 2 {
		t.Fatalf("LoadPack loaded %d samples, want 2", n)
	}

	kick, ok := mgr.GetSample("drums", "kick")
	if !ok {
		t.Fatal("expected to resolve drums/kick")
	}
	if kick.Frames() != 4 {
		t.Errorf("kick.Frames() = %d, want 4", kick.Frames())
	}
	if kick.Left[1] <= 0 {
		t.Errorf("kick.Left[1] = %f, want a positive value near 0.5", kick.Left[1])
	}
}

func TestGetSampleReturnsFalseForUnknownPackOrName(t *testing.T) {
	mgr := NewManager()
	if _, ok := mgr.GetSample("nope", "kick"); ok {
		t.Error("GetSample should fail for an unknown pack")
	}

	dir := t.TempDir()
	writeTestWav(t, filepath.Join(dir, "kick.wav"), []int{0, 1})
	mgr.LoadPack("drums", dir)
	if _, ok := mgr.GetSample("drums", "snare"); ok {
		t.Error("GetSample should fail for an unknown sample name within a known pack")
	}
}

func TestLoadPackSkipsNonWavFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestWav(t, filepath.Join(dir, "kick.wav"), []int{0, 1})
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	mgr := NewManager()
	n, err := mgr.LoadPack("drums", dir)
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if n != 1 {
		t.Errorf("LoadPack loaded %d samples, want 1 (non-wav file skipped)", n)
	}
}

func TestLoadPackMissingDirectoryReturnsError(t *testing.T) {
	mgr := NewManager()
	if _, err := mgr.LoadPack("drums", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("LoadPack should error on a missing directory")
	}
}
