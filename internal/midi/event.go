// Package midi implements the timed MIDI event pipeline between the
// Runtime scheduler and the DSP loop: wire-format messages, the
// wall-clock-to-tick stamped envelope (MidiEventAt), and the tick-indexed
// inbox (MidiStack) instruments drain from during rendering.
//
// Wire encoding/decoding of standard channel voice messages is delegated
// to gitlab.com/gomidi/midi/v2 rather than hand-rolled, the way the
// retrieval pack's MIDI-producing repos (icco-genidi,
// james-see-synthtribe2midi, grahamseamans-go-sequence) do it.
package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// Event is a raw MIDI wire message, including the proprietary sysex
// envelope used for in-process commands (see sysex.go).
type Event []byte

// ControlsTrack is the reserved pseudo-track name shared by Runtime and
// Engine: events addressed here are diverted to the Controls registry
// instead of a real track.
const ControlsTrack = "__controls__"

// NoteOn builds a MIDI note-on message.
func NoteOn(channel, note, velocity uint8) Event {
	return Event(gomidi.NoteOn(channel, note, velocity).Bytes())
}

// NoteOff builds a MIDI note-off message.
func NoteOff(channel, note, velocity uint8) Event {
	return Event(gomidi.NoteOffVelocity(channel, note, velocity).Bytes())
}

// ControlChange builds a MIDI CC message.
func ControlChange(channel, controller, value uint8) Event {
	return Event(gomidi.ControlChange(channel, controller, value).Bytes())
}

// IsNoteOn reports whether the event is a note-on with nonzero velocity,
// returning the channel, note, and velocity.
func (e Event) IsNoteOn() (channel, note, velocity uint8, ok bool) {
	var ch, n, v uint8
	if gomidi.Message(e).GetNoteOn(&ch, &n, &v) && v > 0 {
		return ch, n, v, true
	}
	return 0, 0, 0, false
}

// IsNoteOff reports whether the event is a note-off (or note-on with
// zero velocity, per the MIDI spec).
func (e Event) IsNoteOff() (channel, note, velocity uint8, ok bool) {
	var ch, n, v uint8
	msg := gomidi.Message(e)
	if msg.GetNoteOff(&ch, &n, &v) {
		return ch, n, v, true
	}
	if msg.GetNoteOn(&ch, &n, &v) && v == 0 {
		return ch, n, v, true
	}
	return 0, 0, 0, false
}

// IsControlChange reports whether the event is a CC message.
func (e Event) IsControlChange() (channel, controller, value uint8, ok bool) {
	var ch, c, v uint8
	if gomidi.Message(e).GetControlChange(&ch, &c, &v) {
		return ch, c, v, true
	}
	return 0, 0, 0, false
}

// IsSysEx reports whether the event is a system-exclusive message and
// returns its payload (without the 0xF0/0xF7 framing bytes).
func (e Event) IsSysEx() (payload []byte, ok bool) {
	var data []byte
	if gomidi.Message(e).GetSysEx(&data) {
		return data, true
	}
	return nil, false
}
