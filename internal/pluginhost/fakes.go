package pluginhost

// NullPlugin is a no-op Plugin: silence in, silence out, no
// parameters. Used as the zero value for a Plugin-kind track whose
// configuration does not (yet) resolve to a real plugin.
type NullPlugin struct{}

func (NullPlugin) Activate(float64, int) error        { return nil }
func (NullPlugin) Process([]float32, []float32, [][]byte) {}
func (NullPlugin) GetParameters() map[string]ParameterInfo { return nil }
func (NullPlugin) SetParameter(string, float64)        {}
func (NullPlugin) OpenEditor() error                   { return nil }
func (NullPlugin) CloseEditor()                        {}

// TestPlugin is an in-memory fake recording every call it receives,
// for instrument.Plugin adapter tests that need to assert on activation
// parameters, processed MIDI, and parameter writes without a real
// plugin binary.
type TestPlugin struct {
	Activated      bool
	SampleRate     float64
	BlockSize      int
	ProcessedCalls int
	LastMidiIn     [][]byte
	Parameters     map[string]ParameterInfo
	SetCalls       map[string]float64
	Gain           float64 // applied to every sample in Process, default 1
}

// NewTestPlugin builds a TestPlugin exposing a single "gain" parameter.
func NewTestPlugin() *TestPlugin {
	return &TestPlugin{
		Gain: 1,
		Parameters: map[string]ParameterInfo{
			"gain": {ID: "gain", Default: 1, Min: 0, Max: 2},
		},
		SetCalls: make(map[string]float64),
	}
}

func (p *TestPlugin) Activate(sampleRate float64, blockSize int) error {
	p.Activated = true
	p.SampleRate = sampleRate
	p.BlockSize = blockSize
	return nil
}

func (p *TestPlugin) Process(left, right []float32, midiIn [][]byte) {
	p.ProcessedCalls++
	p.LastMidiIn = midiIn
	gain := float32(p.Gain)
	for i := range left {
		left[i] *= gain
	}
	for i := range right {
		right[i] *= gain
	}
}

func (p *TestPlugin) GetParameters() map[string]ParameterInfo {
	return p.Parameters
}

func (p *TestPlugin) SetParameter(id string, value float64) {
	p.SetCalls[id] = value
	if id == "gain" {
		p.Gain = value
	}
}

func (p *TestPlugin) OpenEditor() error { return nil }
func (p *TestPlugin) CloseEditor()      {}
