package raspberry

import (
	"fmt"
	"sync"

	"cascade/pkg/port"
)

// Emulator is a gpio and adc backend which keeps all levels in memory.
// Levels and samples are set with Set and SetRaw, e.g. from the web api or from tests.
type Emulator struct {
	m    sync.Mutex
	pins map[int]*EmuPin
	// raw holds the analog samples per adc channel and mux channel
	raw map[emuChannel]int
	// routes holds the select pins of a multiplexer in front of an adc channel
	routes map[int][]int
	// digital holds the select pins of a multiplexer in front of an input pin
	digital map[int][]int
	// levels holds the levels per input pin and mux channel of routed input pins
	levels map[emuChannel]port.StateType
}

type emuChannel struct {
	line, channel int
}

// EmuPin is an emulated digital pin.
type EmuPin struct {
	emu   *Emulator
	pin   int
	level port.StateType
}

// EmuAnalog is an emulated adc channel.
type EmuAnalog struct {
	emu  *Emulator
	line int
}

// NewEmulator creates an emulator without any pins.
func NewEmulator() *Emulator {
	return &Emulator{
		pins:    map[int]*EmuPin{},
		raw:     map[emuChannel]int{},
		routes:  map[int][]int{},
		digital: map[int][]int{},
		levels:  map[emuChannel]port.StateType{},
	}
}

// Close releases all pins.
func (e *Emulator) Close() error {
	e.m.Lock()
	defer e.m.Unlock()

	e.pins = map[int]*EmuPin{}
	e.levels = map[emuChannel]port.StateType{}
	return nil
}

// Input creates an emulated input pin.
// A pulled up pin starts high, all others start low.
func (e *Emulator) Input(p int, bias string) (port.DigitalIn, error) {
	if !validBias(bias) {
		return nil, port.ErrInvalidParam
	}

	level := port.Low
	if bias == BiasPullUp {
		level = port.High
	}
	return e.newPin(p, level)
}

// Output creates an emulated output pin, initially low.
func (e *Emulator) Output(p int) (port.DigitalOut, error) {
	return e.newPin(p, port.Low)
}

func (e *Emulator) newPin(p int, level port.StateType) (*EmuPin, error) {
	e.m.Lock()
	defer e.m.Unlock()

	if _, ok := e.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	pin := &EmuPin{emu: e, pin: p, level: level}
	e.pins[p] = pin
	return pin, nil
}

// Analog returns an emulated adc channel.
func (e *Emulator) Analog(line int) (port.AnalogIn, error) {
	return &EmuAnalog{emu: e, line: line}, nil
}

// Route declares that the adc channel line is fed by a multiplexer with the select pins (S0 first).
// Reads of line then return the sample of the currently selected mux channel.
func (e *Emulator) Route(line int, selects []int) {
	e.m.Lock()
	defer e.m.Unlock()

	e.routes[line] = selects
}

// RouteDigital declares that the input pin is fed by a digital multiplexer with the select pins (S0 first).
// Reads of pin then return the level of the currently selected mux channel.
// Channels which were never set read the idle level of the pin.
func (e *Emulator) RouteDigital(pin int, selects []int) {
	e.m.Lock()
	defer e.m.Unlock()

	e.digital[pin] = selects
}

// Set changes the level of an emulated pin.
// channel is the mux channel, 0 if the pin isn't multiplexed.
func (e *Emulator) Set(p, channel int, level port.StateType) error {
	e.m.Lock()
	defer e.m.Unlock()

	pin, ok := e.pins[p]
	if !ok {
		return fmt.Errorf("%w: pin %v not in use", port.ErrInvalidParam, p)
	}

	if _, routed := e.digital[p]; routed {
		e.levels[emuChannel{line: p, channel: channel}] = level
		return nil
	}
	if channel != 0 {
		return fmt.Errorf("%w: pin %v isn't multiplexed", port.ErrInvalidParam, p)
	}

	pin.level = level
	return nil
}

// Level returns the level of an emulated pin (and mux channel).
func (e *Emulator) Level(p, channel int) (port.StateType, error) {
	e.m.Lock()
	defer e.m.Unlock()

	pin, ok := e.pins[p]
	if !ok {
		return port.Invalid, fmt.Errorf("%w: pin %v not in use", port.ErrInvalidParam, p)
	}

	if _, routed := e.digital[p]; routed {
		return e.levelOf(pin, channel), nil
	}
	if channel != 0 {
		return port.Invalid, fmt.Errorf("%w: pin %v isn't multiplexed", port.ErrInvalidParam, p)
	}
	return pin.level, nil
}

// selected decodes the mux channel from the levels of the select pins.
// The caller holds e.m.
func (e *Emulator) selected(selects []int) int {
	channel := 0
	for i, s := range selects {
		if pin, ok := e.pins[s]; ok && pin.level == port.High {
			channel |= 1 << i
		}
	}
	return channel
}

// levelOf returns the level of channel of a routed pin, the caller holds e.m.
func (e *Emulator) levelOf(pin *EmuPin, channel int) port.StateType {
	if l, ok := e.levels[emuChannel{line: pin.pin, channel: channel}]; ok {
		return l
	}
	return pin.level
}

// SetRaw sets the analog sample of adc channel line.
// channel is the mux channel, 0 if the line isn't multiplexed.
func (e *Emulator) SetRaw(line, channel, raw int) {
	e.m.Lock()
	defer e.m.Unlock()

	e.raw[emuChannel{line: line, channel: channel}] = raw
}

// Read pin state (high/low), of the selected mux channel if the pin is routed.
func (p *EmuPin) Read() port.StateType {
	e := p.emu
	e.m.Lock()
	defer e.m.Unlock()

	if selects, ok := e.digital[p.pin]; ok {
		return e.levelOf(p, e.selected(selects))
	}
	return p.level
}

// Write pin state (high/low).
func (p *EmuPin) Write(s port.StateType) {
	p.emu.m.Lock()
	defer p.emu.m.Unlock()

	p.level = s
}

// Read returns the sample of the adc channel (and the selected mux channel).
func (a *EmuAnalog) Read() int {
	e := a.emu
	e.m.Lock()
	defer e.m.Unlock()

	return e.raw[emuChannel{line: a.line, channel: e.selected(e.routes[a.line])}]
}
