package midi

import (
	"encoding/json"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// SysexKind identifies one of corelx's in-process sysex commands. The
// wire layout is byte 0 = kind, bytes 1..N = JSON, wrapped in a standard
// MIDI sysex frame (0xF0 ... 0xF7) by gomidi.SysEx.
type SysexKind uint8

const (
	SysexSamplerPlay    SysexKind = 1
	SysexSamplerStop    SysexKind = 2
	SysexUpdateControls SysexKind = 3
)

// BuildSysex encodes a command kind and JSON payload into a MIDI sysex
// Event, using a fixed wire layout of kind byte plus JSON body.
func BuildSysex(kind SysexKind, payload any) (Event, error) {
	js, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("midi: marshal sysex payload: %w", err)
	}
	body := make([]byte, 0, len(js)+1)
	body = append(body, byte(kind))
	body = append(body, js...)
	return Event(gomidi.SysEx(body).Bytes()), nil
}

// DecodeSysex extracts the kind and raw JSON body from a sysex Event.
// Returns ok=false if the event is not a well-formed sysex command.
func DecodeSysex(e Event) (kind SysexKind, json []byte, ok bool) {
	payload, isSysex := e.IsSysEx()
	if !isSysex || len(payload) < 1 {
		return 0, nil, false
	}
	return SysexKind(payload[0]), payload[1:], true
}

// SamplerPlayPayload is the JSON schema for a SamplerPlay sysex command.
// Numeric fields use pointers so a missing field can be told apart from
// an explicit zero; Pan/Amp may instead carry a control-name string (see
// AmpRef/PanRef).
type SamplerPlayPayload struct {
	Pack    string   `json:"pack"`
	Name    string   `json:"name"`
	Start   *float64 `json:"start,omitempty"`
	End     *float64 `json:"end,omitempty"`
	Pan     *float64 `json:"pan,omitempty"`
	PanRef  *string  `json:"-"`
	Rate    *float64 `json:"rate,omitempty"`
	Attack  *float64 `json:"attack,omitempty"`
	Decay   *float64 `json:"decay,omitempty"`
	Level   *float64 `json:"level,omitempty"`
	Release *float64 `json:"release,omitempty"`
	Amp     *float64 `json:"amp,omitempty"`
	AmpRef  *string  `json:"-"`
}

// SamplerStopPayload is the JSON schema for a SamplerStop sysex command.
type SamplerStopPayload struct {
	Pack string `json:"pack"`
	Name string `json:"name"`
}

// UpdateControlsPayload is the JSON schema for an UpdateControls sysex
// command: a flat map of control name to new target value.
type UpdateControlsPayload struct {
	Knobs map[string]float64 `json:"knobs"`
}

// defaults for SamplerPlayPayload's optional numeric fields.
var SamplerPlayDefaults = SamplerPlayPayload{
	Start: floatPtr(0), End: floatPtr(1), Pan: floatPtr(0), Rate: floatPtr(1),
	Attack: floatPtr(0), Decay: floatPtr(0), Level: floatPtr(1), Release: floatPtr(0),
	Amp: floatPtr(1),
}

func floatPtr(v float64) *float64 { return &v }

// rawSamplerPlay mirrors SamplerPlayPayload but with Pan/Amp as raw
// json.RawMessage so either a number or a control-name string can be
// decoded, since the sysex schema allows either.
type rawSamplerPlay struct {
	Pack    string          `json:"pack"`
	Name    string          `json:"name"`
	Start   *float64        `json:"start,omitempty"`
	End     *float64        `json:"end,omitempty"`
	Pan     json.RawMessage `json:"pan,omitempty"`
	Rate    *float64        `json:"rate,omitempty"`
	Attack  *float64        `json:"attack,omitempty"`
	Decay   *float64        `json:"decay,omitempty"`
	Level   *float64        `json:"level,omitempty"`
	Release *float64        `json:"release,omitempty"`
	Amp     json.RawMessage `json:"amp,omitempty"`
}

// ParseSamplerPlay decodes a SamplerPlay JSON body, applying the
// defaults for any field the caller omitted and resolving Pan/Amp as
// either a literal number or a control-name reference.
func ParseSamplerPlay(js []byte) (SamplerPlayPayload, error) {
	var raw rawSamplerPlay
	if err := json.Unmarshal(js, &raw); err != nil {
		return SamplerPlayPayload{}, fmt.Errorf("midi: parse SamplerPlay: %w", err)
	}
	out := SamplerPlayDefaults
	out.Pack, out.Name = raw.Pack, raw.Name
	if raw.Start != nil {
		out.Start = raw.Start
	}
	if raw.End != nil {
		out.End = raw.End
	}
	if raw.Rate != nil {
		out.Rate = raw.Rate
	}
	if raw.Attack != nil {
		out.Attack = raw.Attack
	}
	if raw.Decay != nil {
		out.Decay = raw.Decay
	}
	if raw.Level != nil {
		out.Level = raw.Level
	}
	if raw.Release != nil {
		out.Release = raw.Release
	}
	if v, ref, ok := parseNumOrRef(raw.Pan); ok {
		if ref != "" {
			out.PanRef = &ref
		} else {
			out.Pan = &v
		}
	}
	if v, ref, ok := parseNumOrRef(raw.Amp); ok {
		if ref != "" {
			out.AmpRef = &ref
		} else {
			out.Amp = &v
		}
	}
	return out, nil
}

func parseNumOrRef(raw json.RawMessage) (num float64, ref string, ok bool) {
	if len(raw) == 0 {
		return 0, "", false
	}
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, "", true
	}
	if err := json.Unmarshal(raw, &ref); err == nil {
		return 0, ref, true
	}
	return 0, "", false
}

// ParseSamplerStop decodes a SamplerStop JSON body.
func ParseSamplerStop(js []byte) (SamplerStopPayload, error) {
	var out SamplerStopPayload
	if err := json.Unmarshal(js, &out); err != nil {
		return out, fmt.Errorf("midi: parse SamplerStop: %w", err)
	}
	return out, nil
}

// ParseUpdateControls decodes an UpdateControls JSON body.
func ParseUpdateControls(js []byte) (UpdateControlsPayload, error) {
	var out UpdateControlsPayload
	if err := json.Unmarshal(js, &out); err != nil {
		return out, fmt.Errorf("midi: parse UpdateControls: %w", err)
	}
	return out, nil
}
