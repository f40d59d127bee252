// Package port holds the definition of the physical inputs and outputs of the controller.
package port

import "errors"

// ErrInvalidParam is returned for pins, channels and options a backend or multiplexer can't provide.
var ErrInvalidParam = errors.New("invalid parameters")

type StateType int

const (
	// High indicates a logical 1.
	High StateType = 1
	// Low indicates a logical 0.
	Low StateType = 0
	// Invalid indicates an unknown or invalid state.
	Invalid StateType = -1
)

// Invert returns the opposite logical level.
// Invalid stays Invalid.
func (s StateType) Invert() StateType {
	switch s {
	case High:
		return Low
	case Low:
		return High
	default:
		return Invalid
	}
}

func (s StateType) String() string {
	switch s {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "invalid"
	}
}

// Level converts a raw line value (0/1) to a StateType.
func Level(v int) StateType {
	switch v {
	case 0:
		return Low
	case 1:
		return High
	default:
		return Invalid
	}
}

// DigitalIn reads the logical level of a configured input pin.
type DigitalIn interface {
	Read() StateType
}

// DigitalOut sets the level of a configured output pin.
type DigitalOut interface {
	Write(StateType)
}

// AnalogIn reads a raw N-bit sample of a configured input channel.
type AnalogIn interface {
	Read() int
}
