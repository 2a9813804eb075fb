// Package pluginhost defines the opaque plugin capability the engine
// consumes, and the platform search-path list.
//
// Deliberately does not implement a VST3 ABI, C bridge, or
// binary-format scanner — plugin hosting protocol details are out of
// scope, specified only as this narrow interface. The teacher's
// pkg/vst3/pkg/bridge/pkg/plugin/cbridge packages build the opposite
// side of this boundary (a plugin loaded by a host, not a host loading
// plugins) and are not adapted here; see DESIGN.md.
package pluginhost

import (
	"os"
	"runtime"
)

// ParameterInfo describes one plugin parameter exposed to automation.
type ParameterInfo struct {
	ID      string
	Default float64
	Min     float64
	Max     float64
}

// Plugin is the opaque capability the engine consumes: activate once,
// process blocks of audio against timed MIDI, and read/write a flat
// parameter surface. Binary loading and ABI details live entirely on
// the other side of this interface.
type Plugin interface {
	Activate(sampleRate float64, blockSize int) error
	Process(left, right []float32, midiIn [][]byte)
	GetParameters() map[string]ParameterInfo
	SetParameter(id string, value float64)
	// OpenEditor/CloseEditor are optional: implementations without a
	// GUI surface return nil/no-op.
	OpenEditor() error
	CloseEditor()
}

// SearchPaths returns the platform-default VST3 bundle search paths
// for goos. Scanning those directories and probing bundles is
// explicitly out of scope; this only returns the list.
func SearchPaths(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Library/Audio/Plug-Ins/VST3",
			homeDir() + "/Library/Audio/Plug-Ins/VST3",
		}
	case "windows":
		return []string{`C:\Program Files\Common Files\VST3`}
	default: // linux and other unix-likes
		return []string{
			"/usr/lib/vst3",
			"/usr/local/lib/vst3",
			homeDir() + "/.vst3",
		}
	}
}

// CurrentPlatformSearchPaths is SearchPaths(runtime.GOOS).
func CurrentPlatformSearchPaths() []string {
	return SearchPaths(runtime.GOOS)
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return ""
}
