//go:build midi_native

package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type port struct {
	out  drivers.Out
	send func(midi.Message) error
}

// Open opens the first output port whose name contains name.
func Open(name string) (Out, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("can't find midi output %q: %w", name, err)
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("can't open midi output %q: %w", name, err)
	}

	return &port{out: out, send: send}, nil
}

func (p *port) Send(msg midi.Message) error {
	return p.send(msg)
}

func (p *port) Close() error {
	err := p.out.Close()
	midi.CloseDriver()
	return err
}

// ListOutputs returns the names of the available midi outputs.
func ListOutputs() []string {
	var names []string
	for _, o := range midi.GetOutPorts() {
		names = append(names, o.String())
	}
	return names
}
