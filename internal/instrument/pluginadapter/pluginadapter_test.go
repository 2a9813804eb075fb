package pluginadapter

import (
	"testing"

	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/pluginhost"
)

func TestInitActivatesPluginAtEngineRateAndBlockSize(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	a := New(p)

	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !p.Activated {
		t.Fatal("Init should activate the wrapped plugin")
	}
	if p.SampleRate != float64(audio.SampleRate) || p.BlockSize != audio.BlockSize {
		t.Errorf("Activate called with rate=%f block=%d, want %d/%d", p.SampleRate, p.BlockSize, audio.SampleRate, audio.BlockSize)
	}
}

func TestRenderForwardsBufferAndMidiToPlugin(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	p.Gain = 0.5
	a := New(p)
	_ = a.Init()

	buf := audio.New(4)
	for i := range buf.Left {
		buf.Left[i], buf.Right[i] = 1.0, 1.0
	}
	events := []midi.EventAt{{Msg: midi.NoteOn(0, 60, 100)}}

	a.Render(0, events, buf)

	if p.ProcessedCalls != 1 {
		t.Fatalf("ProcessedCalls = %d, want 1", p.ProcessedCalls)
	}
	if len(p.LastMidiIn) != 1 {
		t.Errorf("LastMidiIn has %d entries, want 1", len(p.LastMidiIn))
	}
	if buf.Left[0] != 0.5 {
		t.Errorf("buf.Left[0] = %f, want 0.5 (gain applied)", buf.Left[0])
	}
}

func TestRenderIsNoopBeforeInit(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	a := New(p)

	buf := audio.New(4)
	buf.Left[0] = 1.0
	a.Render(0, nil, buf)

	if p.ProcessedCalls != 0 {
		t.Error("Render before Init should not drive the plugin")
	}
	if buf.Left[0] != 1.0 {
		t.Error("Render before Init should leave the buffer untouched")
	}
}

func TestCanFastUpdateOnlyAcceptsSameUnderlyingPlugin(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	a := New(p)
	same := New(p)
	different := New(pluginhost.NewTestPlugin())

	if !a.CanFastUpdate(same) {
		t.Error("CanFastUpdate should accept an adapter over the identical plugin instance")
	}
	if a.CanFastUpdate(different) {
		t.Error("CanFastUpdate should reject a different plugin instance")
	}
}

func TestSetParameterForwardsToPlugin(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	a := New(p)
	a.SetParameter("gain", 0.25)

	if p.SetCalls["gain"] != 0.25 {
		t.Errorf("plugin gain set call = %f, want 0.25", p.SetCalls["gain"])
	}
}

func TestStopWithoutOpenEditorDoesNotPanic(t *testing.T) {
	p := pluginhost.NewTestPlugin()
	a := New(p)
	a.Stop() // must not panic even though OpenEditor was never called
}
