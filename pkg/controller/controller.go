// Package controller polls the buttons and pots of the controller and collects their events.
package controller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/womat/debug"

	"cascade/pkg/button"
	"cascade/pkg/midi"
	"cascade/pkg/pot"
	"cascade/pkg/port"
)

var ErrUnknownControl = errors.New("unknown control")

// Kind is the type of control which raised an event.
type Kind string

const (
	KindButton Kind = "button"
	KindPot    Kind = "pot"
)

// Event is a confirmed change of a control, ready to be sent.
type Event struct {
	Time    time.Time
	Kind    Kind
	Name    string
	Command byte
	Channel byte
	// Data1 is the note/controller number, Data2 the pot value.
	Data1   byte
	Data2   int
	Pressed bool
}

// State is the current state of a control (see Snapshot).
type State struct {
	Name    string
	Kind    Kind
	Pin     int
	Command byte
	Data1   byte
	Channel byte
	// Level is the stable level of a button.
	Level string `json:",omitempty"`
	// Pressed is set for buttons.
	Pressed bool `json:",omitempty"`
	// Debouncing is set while a button change waits for confirmation.
	Debouncing bool `json:",omitempty"`
	// Value is the last reported value of a pot.
	Value int `json:",omitempty"`
}

type namedButton struct {
	name      string
	activeLow bool
	*button.Button
}

type namedPot struct {
	name string
	*pot.Pot
}

// Controller owns the controls.
// Poll must only be called from one go routine, Remap and Snapshot may be called concurrently.
type Controller struct {
	m       sync.Mutex
	buttons []namedButton
	pots    []namedPot
	names   map[string]struct{}
}

// New creates an empty controller.
func New() *Controller {
	return &Controller{names: map[string]struct{}{}}
}

// AddButton adds a button, activeLow means the button is pressed at level low (pull-up wiring).
func (c *Controller) AddButton(name string, b *button.Button, activeLow bool) error {
	c.m.Lock()
	defer c.m.Unlock()

	if err := c.addName(name); err != nil {
		return err
	}
	c.buttons = append(c.buttons, namedButton{name: name, activeLow: activeLow, Button: b})
	return nil
}

// AddPot adds a pot. Pots are polled in the order they are added.
func (c *Controller) AddPot(name string, p *pot.Pot) error {
	c.m.Lock()
	defer c.m.Unlock()

	if err := c.addName(name); err != nil {
		return err
	}
	c.pots = append(c.pots, namedPot{name: name, Pot: p})
	return nil
}

func (c *Controller) addName(name string) error {
	if name == "" {
		return fmt.Errorf("control name is empty")
	}
	if _, ok := c.names[name]; ok {
		return fmt.Errorf("control %q already defined", name)
	}
	c.names[name] = struct{}{}
	return nil
}

// Poll calls GetValue of every button and then of every pot once
// and returns the confirmed events.
func (c *Controller) Poll() []Event {
	var events []Event

	c.m.Lock()
	defer c.m.Unlock()

	now := time.Now()

	for _, b := range c.buttons {
		e := b.GetValue()
		if !e.Confirmed() {
			continue
		}

		m := b.Mapping()
		pressed := (e == button.Pressed) != b.activeLow
		debug.DebugLog.Printf("button %s: %v (pressed: %v)", b.name, e, pressed)

		events = append(events, Event{
			Time:    now,
			Kind:    KindButton,
			Name:    b.name,
			Command: m.Command,
			Channel: m.Channel,
			Data1:   m.Value,
			Pressed: pressed,
		})
	}

	for _, p := range c.pots {
		v := p.GetValue()
		if v == pot.NoChange {
			continue
		}

		m := p.Mapping()
		debug.DebugLog.Printf("pot %s: %v (raw %v)", p.name, v, p.Raw())

		events = append(events, Event{
			Time:    now,
			Kind:    KindPot,
			Name:    p.name,
			Command: m.Command,
			Channel: m.Channel,
			Data1:   m.Control,
			Data2:   v,
		})
	}

	return events
}

// Remap changes the midi mapping of a control without touching its state.
func (c *Controller) Remap(name string, command, value, channel byte) error {
	if !midi.ValidCommand(command) {
		return fmt.Errorf("%w: 0x%02x", midi.ErrUnsupportedCommand, command)
	}

	c.m.Lock()
	defer c.m.Unlock()

	for _, b := range c.buttons {
		if b.name == name {
			b.NewValue(command, value, channel)
			return nil
		}
	}

	for _, p := range c.pots {
		if p.name == name {
			p.NewValue(command, value, channel)
			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// Kind returns the kind of the control name.
func (c *Controller) Kind(name string) (Kind, error) {
	c.m.Lock()
	defer c.m.Unlock()

	for _, b := range c.buttons {
		if b.name == name {
			return KindButton, nil
		}
	}
	for _, p := range c.pots {
		if p.name == name {
			return KindPot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// Snapshot returns the state of all controls, buttons first.
func (c *Controller) Snapshot() []State {
	c.m.Lock()
	defer c.m.Unlock()

	s := make([]State, 0, len(c.buttons)+len(c.pots))

	for _, b := range c.buttons {
		m := b.Mapping()
		s = append(s, State{
			Name:    b.name,
			Kind:    KindButton,
			Pin:     b.Pin(),
			Command: m.Command,
			Data1:   m.Value,
			Channel: m.Channel,
			Level:   b.Level().String(),
			Pressed: (b.Level() == port.High) != b.activeLow,

			Debouncing: b.Busy(),
		})
	}

	for _, p := range c.pots {
		m := p.Mapping()
		s = append(s, State{
			Name:    p.name,
			Kind:    KindPot,
			Pin:     p.Pin(),
			Command: m.Command,
			Data1:   m.Control,
			Channel: m.Channel,
			Value:   p.Value(),
		})
	}

	return s
}
