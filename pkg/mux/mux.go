// Package mux drives the channel select lines of an analog or digital multiplexer.
package mux

import (
	"fmt"

	"cascade/pkg/port"
)

// MaxChannels is the largest multiplexer supported (four select lines).
const MaxChannels = 16

// Selector routes channel k of a multiplexer onto its shared line.
type Selector interface {
	Select(channel int)
}

// Mux is a multiplexer bank sharing one input line.
type Mux struct {
	// line is the shared input line (adc channel or gpio).
	line    int
	numPins int
	analog  bool
	// selects are the select lines S0, S1, S2 (and S3 above 8 channels), LSB first.
	selects []port.DigitalOut
}

// SelectLines returns the number of select lines needed for numPins channels.
func SelectLines(numPins int) int {
	if numPins > 8 {
		return 4
	}
	return 3
}

// New checks the configuration and returns a multiplexer using the select lines.
func New(line, numPins int, analog bool, selects []port.DigitalOut) (*Mux, error) {
	if numPins < 1 || numPins > MaxChannels {
		return nil, fmt.Errorf("%w: %v channels (1..%v)", port.ErrInvalidParam, numPins, MaxChannels)
	}

	if n := SelectLines(numPins); len(selects) != n {
		return nil, fmt.Errorf("%w: %v channels need %v select lines, got %v", port.ErrInvalidParam, numPins, n, len(selects))
	}

	return &Mux{line: line, numPins: numPins, analog: analog, selects: selects}, nil
}

// Select writes channel to the select lines.
// Channels out of range are a caller error and are masked to the available lines.
func (m *Mux) Select(channel int) {
	for i, s := range m.selects {
		if channel>>i&1 == 1 {
			s.Write(port.High)
		} else {
			s.Write(port.Low)
		}
	}
}

// Line returns the shared input line.
func (m *Mux) Line() int {
	return m.line
}

// NumPins returns the number of channels.
func (m *Mux) NumPins() int {
	return m.numPins
}

// Analog reports whether the shared line is sampled by an adc.
func (m *Mux) Analog() bool {
	return m.analog
}

// Digital returns an input which selects channel before every read of in.
func (m *Mux) Digital(channel int, in port.DigitalIn) port.DigitalIn {
	return &routed{mux: m, channel: channel, in: in}
}

type routed struct {
	mux     *Mux
	channel int
	in      port.DigitalIn
}

func (r *routed) Read() port.StateType {
	r.mux.Select(r.channel)
	return r.in.Read()
}
