// Package button implements a polled, debounced digital button.
package button

import (
	"time"

	"cascade/pkg/clock"
	"cascade/pkg/port"
)

// Event is the result of one GetValue call.
type Event uint8

const (
	// Released reports a confirmed transition to level low.
	Released Event = 0
	// Pressed reports a confirmed transition to level high.
	Pressed Event = 1
	// NoChange means the pin is at its last stable level and nothing is in progress.
	NoChange Event = 2
	// Pending means a candidate transition is being debounced (or was just rejected).
	Pending Event = 255
)

func (e Event) String() string {
	switch e {
	case Released:
		return "released"
	case Pressed:
		return "pressed"
	case NoChange:
		return "nochange"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Confirmed reports whether e is a debounced level change.
func (e Event) Confirmed() bool {
	return e == Released || e == Pressed
}

// phaseType represents the state of the debounce process.
type phaseType int

const (
	// idle: waiting for the pin to leave the last stable level.
	idle phaseType = iota
	// candidate: a level change was detected, waiting for the debounce time to pass.
	candidate
)

// Mapping is the MIDI mapping of a button.
type Mapping struct {
	Command byte
	Value   byte
	Channel byte
}

// Config is the fixed configuration of a button.
type Config struct {
	Pin      int
	Mapping  Mapping
	Debounce time.Duration
	// Idle is the initial stable level, High for pull-up wiring.
	Idle port.StateType
}

// Button owns the debounce state machine of one input pin.
type Button struct {
	pin     int
	in      port.DigitalIn
	clock   clock.Clock
	mapping Mapping
	// debounce is the debounce time in ms
	debounce uint32

	phase phaseType
	// last is the last stable (debounced) level.
	last port.StateType
	// start is the clock value when the candidate was detected.
	start uint32
}

// New creates a button reading from in.
func New(c Config, in port.DigitalIn, clk clock.Clock) *Button {
	level := c.Idle
	if level != port.Low {
		level = port.High
	}

	return &Button{
		pin:      c.Pin,
		in:       in,
		clock:    clk,
		mapping:  c.Mapping,
		debounce: uint32(c.Debounce / time.Millisecond),
		phase:    idle,
		last:     level,
	}
}

// GetValue advances the debounce state machine by one poll.
//  * idle and pin at the stable level: NoChange
//  * idle and pin changed: record the time, Pending
//  * debounce time not passed: Pending
//  * debounce time passed and pin reverted: reject the candidate, Pending
//  * debounce time passed and pin still changed: the new level (Pressed or Released)
func (b *Button) GetValue() Event {
	if b.phase == idle {
		if b.in.Read() == b.last {
			return NoChange
		}

		b.phase = candidate
		b.start = b.clock.Millis()
		return Pending
	}

	if clock.Since(b.clock, b.start) < b.debounce {
		return Pending
	}

	b.phase = idle
	if b.in.Read() == b.last {
		return Pending
	}

	b.last = b.last.Invert()
	return Event(b.last)
}

// NewValue changes the MIDI mapping without touching the debounce state.
func (b *Button) NewValue(command, value, channel byte) {
	b.mapping = Mapping{Command: command, Value: value, Channel: channel}
}

// Mapping returns the current MIDI mapping.
func (b *Button) Mapping() Mapping {
	return b.mapping
}

// Level returns the last stable level.
func (b *Button) Level() port.StateType {
	return b.last
}

// Busy reports whether a candidate transition is being debounced.
func (b *Button) Busy() bool {
	return b.phase == candidate
}

// Pin returns the pin number of the button.
func (b *Button) Pin() int {
	return b.pin
}
