// Package pot implements a polled potentiometer with quantisation and hysteresis.
package pot

import (
	"cascade/pkg/mux"
	"cascade/pkg/port"
)

const (
	// Threshold is the minimum raw change before a new value is reported.
	Threshold = 10
	// Shift is the quantisation: raw >> Shift is reported (10 bit raw -> 7 bit).
	Shift = 3
	// NoChange is returned by GetValue when the reading stays inside the hysteresis band.
	NoChange = 255
)

// Quantize reduces a raw sample to the reported resolution.
func Quantize(raw int) int {
	return raw >> Shift
}

// Expand returns the raw value a quantized value represents.
func Expand(q int) int {
	return q << Shift
}

// Mapping is the MIDI mapping of a pot.
type Mapping struct {
	Command byte
	Control byte
	Channel byte
}

// Config is the fixed configuration of a pot.
type Config struct {
	Pin     int
	Mapping Mapping
}

// Pot tracks the reported value of one analog input.
type Pot struct {
	pin     int
	in      port.AnalogIn
	mapping Mapping

	// selector and channel route the pot through a multiplexer (selector is nil otherwise).
	selector mux.Selector
	channel  int

	// value is the last raw sample.
	value int
	// oldValue is the last reported value, expanded back to the raw scale.
	oldValue int
}

// New creates a pot on a direct analog input and samples the baseline.
func New(c Config, in port.AnalogIn) *Pot {
	p := &Pot{pin: c.Pin, in: in, mapping: c.Mapping}
	p.baseline()
	return p
}

// NewMuxed creates a pot on channel of a multiplexer whose shared line is in.
func NewMuxed(c Config, sel mux.Selector, channel int, in port.AnalogIn) *Pot {
	p := &Pot{pin: c.Pin, in: in, mapping: c.Mapping, selector: sel, channel: channel}
	p.baseline()
	return p
}

func (p *Pot) baseline() {
	p.muxUpdate()
	p.value = Expand(Quantize(p.in.Read()))
	p.oldValue = p.value
}

// muxUpdate selects the pot's channel; it must directly precede the sample.
func (p *Pot) muxUpdate() {
	if p.selector != nil {
		p.selector.Select(p.channel)
	}
}

// GetValue samples the input and returns the quantized value
// if it moved at least Threshold away from the last reported value, otherwise NoChange.
func (p *Pot) GetValue() int {
	p.muxUpdate()
	p.value = p.in.Read()

	if d := p.oldValue - p.value; d >= Threshold || d <= -Threshold {
		p.oldValue = Expand(Quantize(p.value))
		return Quantize(p.value)
	}

	return NoChange
}

// NewValue changes the MIDI mapping.
func (p *Pot) NewValue(command, control, channel byte) {
	p.mapping = Mapping{Command: command, Control: control, Channel: channel}
}

// Mapping returns the current MIDI mapping.
func (p *Pot) Mapping() Mapping {
	return p.mapping
}

// Value returns the last reported value (quantized).
func (p *Pot) Value() int {
	return Quantize(p.oldValue)
}

// Raw returns the last raw sample.
func (p *Pot) Raw() int {
	return p.value
}

// Pin returns the analog input (or mux line) of the pot.
func (p *Pot) Pin() int {
	return p.pin
}

// Channel returns the mux channel and whether the pot is routed through a mux.
func (p *Pot) Channel() (int, bool) {
	return p.channel, p.selector != nil
}
