// Package pluginadapter wraps an opaque pluginhost.Plugin as an
// Instrument, translating this block's timed MIDI events into raw wire
// bytes and the track's stereo buffer into the plugin's left/right
// slices.
package pluginadapter

import (
	"github.com/kestrelaudio/corelx/internal/audio"
	"github.com/kestrelaudio/corelx/internal/instrument"
	"github.com/kestrelaudio/corelx/internal/midi"
	"github.com/kestrelaudio/corelx/internal/pluginhost"
	"github.com/kestrelaudio/corelx/internal/tick"
)

// PluginAdapter is the Plugin instrument variant: it owns a
// pluginhost.Plugin and drives it every block.
type PluginAdapter struct {
	plugin    pluginhost.Plugin
	activated bool
}

// New builds a PluginAdapter over an already-resolved plugin instance.
// Resolving a plugin by name/path from a search directory is outside
// this core's scope; callers construct the Plugin value
// however their deployment resolves bundles.
func New(plugin pluginhost.Plugin) *PluginAdapter {
	return &PluginAdapter{plugin: plugin}
}

func (p *PluginAdapter) Kind() string { return "plugin" }

func (p *PluginAdapter) Init() error {
	if err := p.plugin.Activate(float64(audio.SampleRate), audio.BlockSize); err != nil {
		return err
	}
	p.activated = true
	return nil
}

func (p *PluginAdapter) CanFastUpdate(other instrument.Instrument) bool {
	o, ok := other.(*PluginAdapter)
	return ok && o.plugin == p.plugin
}

func (p *PluginAdapter) FastUpdate(other instrument.Instrument) {
	// CanFastUpdate only accepts an identical underlying plugin
	// instance, so there is nothing to copy; a parameter change arrives
	// through SetParameter directly, not through track reconfiguration.
}

func (p *PluginAdapter) Stop() {
	p.plugin.CloseEditor()
}

// SetParameter forwards a parameter write to the wrapped plugin; called
// by a caller thread outside the render path.
func (p *PluginAdapter) SetParameter(id string, value float64) {
	p.plugin.SetParameter(id, value)
}

// GetParameters returns the wrapped plugin's parameter surface.
func (p *PluginAdapter) GetParameters() map[string]pluginhost.ParameterInfo {
	return p.plugin.GetParameters()
}

func (p *PluginAdapter) Render(startTick tick.Sample, events []midi.EventAt, buf *audio.Buffer) {
	if !p.activated {
		return
	}
	wire := make([][]byte, 0, len(events))
	for _, e := range events {
		wire = append(wire, e.Msg)
	}
	p.plugin.Process(buf.Left, buf.Right, wire)
}
