package config

import (
	"fmt"
	"strings"

	"cascade/pkg/midi"
	"cascade/pkg/mux"
	"cascade/pkg/raspberry"
)

// CommandCode converts a command name (note|cc|program) to the midi status nibble.
// An empty name returns def.
func CommandCode(name string, def byte) (byte, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return def, nil
	case "note", "noteon":
		return midi.StatusNoteOn, nil
	case "cc", "controlchange":
		return midi.StatusControlChange, nil
	case "program", "programchange":
		return midi.StatusProgramChange, nil
	default:
		return 0, fmt.Errorf("%w: unknown command %q", ErrInvalidConfig, name)
	}
}

// CommandName is the inverse of CommandCode.
func CommandName(code byte) string {
	switch code & midi.StatusCodeMask {
	case midi.StatusNoteOn:
		return "note"
	case midi.StatusControlChange:
		return "cc"
	case midi.StatusProgramChange:
		return "program"
	default:
		return fmt.Sprintf("0x%02x", code)
	}
}

// Validate checks the configuration and fills in the defaults of buttons and pots.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: pollinterval must be at least 1ms", ErrInvalidConfig)
	}

	switch c.Hardware.GPIO {
	case raspberry.BackendGpiod, raspberry.BackendGpiomem, raspberry.BackendEmulator:
	default:
		return fmt.Errorf("%w: unknown gpio backend %q", ErrInvalidConfig, c.Hardware.GPIO)
	}

	muxes := map[string]bool{}
	for _, m := range c.Muxes {
		if m.Name == "" || muxes[m.Name] {
			return fmt.Errorf("%w: mux name %q empty or not unique", ErrInvalidConfig, m.Name)
		}
		muxes[m.Name] = true

		if m.Pins < 1 || m.Pins > mux.MaxChannels {
			return fmt.Errorf("%w: mux %q: pins must be 1..%v", ErrInvalidConfig, m.Name, mux.MaxChannels)
		}
		if n := mux.SelectLines(m.Pins); len(m.Selects) != n {
			return fmt.Errorf("%w: mux %q: %v pins need %v select lines", ErrInvalidConfig, m.Name, m.Pins, n)
		}
		if m.Analog && (m.Line < 0 || m.Line >= raspberry.MCP3008Channels) {
			return fmt.Errorf("%w: mux %q: adc line must be 0..%v", ErrInvalidConfig, m.Name, raspberry.MCP3008Channels-1)
		}
		if m.Line < 0 {
			return fmt.Errorf("%w: mux %q: line %v", ErrInvalidConfig, m.Name, m.Line)
		}
		for _, s := range m.Selects {
			if s < 0 {
				return fmt.Errorf("%w: mux %q: select pin %v", ErrInvalidConfig, m.Name, s)
			}
		}
	}

	names := map[string]bool{}
	unique := func(name string) error {
		if name == "" || names[name] {
			return fmt.Errorf("%w: control name %q empty or not unique", ErrInvalidConfig, name)
		}
		names[name] = true
		return nil
	}

	for i := range c.Buttons {
		b := &c.Buttons[i]
		if err := unique(b.Name); err != nil {
			return err
		}

		if b.Bias == "" {
			b.Bias = raspberry.BiasPullUp
		}
		if b.Bias != raspberry.BiasPullUp && b.Bias != raspberry.BiasPullDown && b.Bias != raspberry.BiasNone {
			return fmt.Errorf("%w: button %q: bias %q", ErrInvalidConfig, b.Name, b.Bias)
		}

		if b.Mux != "" {
			m, ok := c.Mux(b.Mux)
			if !ok || m.Analog {
				return fmt.Errorf("%w: button %q: no digital mux %q", ErrInvalidConfig, b.Name, b.Mux)
			}
			if b.MuxChannel < 0 || b.MuxChannel >= m.Pins {
				return fmt.Errorf("%w: button %q: mux channel %v", ErrInvalidConfig, b.Name, b.MuxChannel)
			}
			// the shared line of a digital mux is always pulled up
			if b.Bias != raspberry.BiasPullUp {
				return fmt.Errorf("%w: button %q: mux inputs are pulled up, bias %q", ErrInvalidConfig, b.Name, b.Bias)
			}
		} else if b.Pin < 0 {
			return fmt.Errorf("%w: button %q: pin %v", ErrInvalidConfig, b.Name, b.Pin)
		}

		if b.Debounce < 0 {
			return fmt.Errorf("%w: button %q: negative debounce", ErrInvalidConfig, b.Name)
		}

		code, err := CommandCode(b.Command, midi.StatusNoteOn)
		if err != nil {
			return fmt.Errorf("button %q: %w", b.Name, err)
		}
		b.Command = CommandName(code)

		if err := checkMIDI(b.Name, b.Value, b.Channel); err != nil {
			return err
		}
	}

	for i := range c.Pots {
		p := &c.Pots[i]
		if err := unique(p.Name); err != nil {
			return err
		}

		if p.Mux != "" {
			m, ok := c.Mux(p.Mux)
			if !ok || !m.Analog {
				return fmt.Errorf("%w: pot %q: no analog mux %q", ErrInvalidConfig, p.Name, p.Mux)
			}
			if p.MuxChannel < 0 || p.MuxChannel >= m.Pins {
				return fmt.Errorf("%w: pot %q: mux channel %v", ErrInvalidConfig, p.Name, p.MuxChannel)
			}
		} else if p.Pin < 0 || p.Pin >= raspberry.MCP3008Channels {
			return fmt.Errorf("%w: pot %q: adc channel must be 0..%v", ErrInvalidConfig, p.Name, raspberry.MCP3008Channels-1)
		}

		code, err := CommandCode(p.Command, midi.StatusControlChange)
		if err != nil {
			return fmt.Errorf("pot %q: %w", p.Name, err)
		}
		if code != midi.StatusControlChange {
			return fmt.Errorf("%w: pot %q: only cc is supported", ErrInvalidConfig, p.Name)
		}
		p.Command = CommandName(code)

		if err := checkMIDI(p.Name, p.Control, p.Channel); err != nil {
			return err
		}
	}

	return nil
}

func checkMIDI(name string, data, channel int) error {
	if data < 0 || data > midi.MaxData {
		return fmt.Errorf("%w: %q: midi data %v out of range 0..%v", ErrInvalidConfig, name, data, midi.MaxData)
	}
	if channel < 0 || channel > MaxMIDIChannel {
		return fmt.Errorf("%w: %q: midi channel %v out of range 0..%v", ErrInvalidConfig, name, channel, MaxMIDIChannel)
	}
	return nil
}
