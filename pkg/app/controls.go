package app

import (
	"fmt"

	"github.com/womat/debug"

	"cascade/pkg/app/config"
	"cascade/pkg/button"
	"cascade/pkg/midi"
	"cascade/pkg/mux"
	"cascade/pkg/port"
	"cascade/pkg/pot"
	"cascade/pkg/raspberry"
)

// buildControls requests the pins of the configured muxes, buttons and pots
// and adds the controls to the controller.
func (app *App) buildControls() error {
	muxes := map[string]*mux.Mux{}
	// lines are the shared input lines of digital muxes, requested once per mux
	lines := map[string]port.DigitalIn{}

	for _, mc := range app.config.Muxes {
		selects := make([]port.DigitalOut, 0, len(mc.Selects))
		for _, s := range mc.Selects {
			o, err := app.gpio.Output(s)
			if err != nil {
				return fmt.Errorf("mux %q: select pin %v: %w", mc.Name, s, err)
			}
			selects = append(selects, o)
		}

		m, err := mux.New(mc.Line, mc.Pins, mc.Analog, selects)
		if err != nil {
			return fmt.Errorf("mux %q: %w", mc.Name, err)
		}

		if app.emulator != nil {
			if mc.Analog {
				app.emulator.Route(mc.Line, mc.Selects)
			} else {
				app.emulator.RouteDigital(mc.Line, mc.Selects)
			}
		}

		debug.InfoLog.Printf("mux %s: line %v, %v channels, analog %v", mc.Name, mc.Line, mc.Pins, mc.Analog)
		muxes[mc.Name] = m
	}

	for _, bc := range app.config.Buttons {
		var in port.DigitalIn
		pin, bias := bc.Pin, bc.Bias

		if bc.Mux != "" {
			m := muxes[bc.Mux]
			line, ok := lines[bc.Mux]
			if !ok {
				var err error
				// digital mux lines are always pulled up
				if line, err = app.gpio.Input(m.Line(), raspberry.BiasPullUp); err != nil {
					return fmt.Errorf("mux %q: line %v: %w", bc.Mux, m.Line(), err)
				}
				lines[bc.Mux] = line
			}
			in = m.Digital(bc.MuxChannel, line)
			pin, bias = m.Line(), raspberry.BiasPullUp
		} else {
			var err error
			if in, err = app.gpio.Input(bc.Pin, bc.Bias); err != nil {
				return fmt.Errorf("button %q: pin %v: %w", bc.Name, bc.Pin, err)
			}
		}

		idle := port.High
		if bias == raspberry.BiasPullDown {
			idle = port.Low
		}

		command, err := config.CommandCode(bc.Command, midi.StatusNoteOn)
		if err != nil {
			return err
		}

		b := button.New(button.Config{
			Pin:      pin,
			Debounce: bc.Debounce,
			Idle:     idle,
			Mapping:  button.Mapping{Command: command, Value: byte(bc.Value), Channel: byte(bc.Channel)},
		}, in, app.clock)

		if err := app.controller.AddButton(bc.Name, b, !bc.ActiveHigh); err != nil {
			return err
		}
		debug.DebugLog.Printf("button %s: pin %v, debounce %v", bc.Name, pin, bc.Debounce)
	}

	for _, pc := range app.config.Pots {
		command, err := config.CommandCode(pc.Command, midi.StatusControlChange)
		if err != nil {
			return err
		}
		mapping := pot.Mapping{Command: command, Control: byte(pc.Control), Channel: byte(pc.Channel)}

		var p *pot.Pot
		if pc.Mux != "" {
			m := muxes[pc.Mux]
			line, err := app.adc.Analog(m.Line())
			if err != nil {
				return fmt.Errorf("pot %q: %w", pc.Name, err)
			}
			p = pot.NewMuxed(pot.Config{Pin: m.Line(), Mapping: mapping}, m, pc.MuxChannel, line)
		} else {
			in, err := app.adc.Analog(pc.Pin)
			if err != nil {
				return fmt.Errorf("pot %q: %w", pc.Name, err)
			}
			p = pot.New(pot.Config{Pin: pc.Pin, Mapping: mapping}, in)
		}

		if err := app.controller.AddPot(pc.Name, p); err != nil {
			return err
		}
		debug.DebugLog.Printf("pot %s: value %v", pc.Name, p.Value())
	}

	return nil
}
