// Package midi converts controller events into midi messages and sends them to an output port.
package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Command codes of a mapping, the status nibble of the midi message.
const (
	StatusNoteOff       = 0x80
	StatusNoteOn        = 0x90
	StatusControlChange = 0xb0
	StatusProgramChange = 0xc0
	StatusCodeMask      = 0xf0
	ChannelMask         = 0x0f

	// MaxData is the largest data byte value.
	MaxData = 0x7f
)

var ErrUnsupportedCommand = fmt.Errorf("unsupported midi command")

// Out is an opened midi output.
type Out interface {
	Send(midi.Message) error
	Close() error
}

// ValidCommand reports whether c can be used as mapping command.
func ValidCommand(c byte) bool {
	switch c & StatusCodeMask {
	case StatusNoteOn, StatusControlChange, StatusProgramChange:
		return true
	}
	return false
}

// Button returns the message of a button transition.
//  note:           pressed -> NoteOn(value, 127), released -> NoteOff(value)
//  control change: pressed -> CC(value, 127),     released -> CC(value, 0)
//  program change: pressed -> PC(value),          released -> nothing
func Button(command, value, channel byte, pressed bool) (midi.Message, error) {
	ch := channel & ChannelMask
	value &= MaxData

	switch command & StatusCodeMask {
	case StatusNoteOn:
		if pressed {
			return midi.NoteOn(ch, value, MaxData), nil
		}
		return midi.NoteOff(ch, value), nil
	case StatusControlChange:
		if pressed {
			return midi.ControlChange(ch, value, MaxData), nil
		}
		return midi.ControlChange(ch, value, 0), nil
	case StatusProgramChange:
		if pressed {
			return midi.ProgramChange(ch, value), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedCommand, command)
	}
}

// Pot returns the message of a new pot value.
// Only control change is supported for pots.
func Pot(command, control, channel byte, value int) (midi.Message, error) {
	if command&StatusCodeMask != StatusControlChange {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedCommand, command)
	}

	if value > MaxData {
		value = MaxData
	}
	if value < 0 {
		value = 0
	}

	return midi.ControlChange(channel&ChannelMask, control&MaxData, byte(value)), nil
}
