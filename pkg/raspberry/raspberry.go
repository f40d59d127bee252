// Package raspberry provides the hardware backends for the controller inputs:
// gpio lines (character device or /dev/gpiomem), an spi adc and a software emulator.
package raspberry

import (
	"fmt"

	"cascade/pkg/port"
)

const (
	// BackendGpiod uses the gpio character device (/dev/gpiochipN).
	BackendGpiod = "gpiod"
	// BackendGpiomem uses the memory mapped gpio registers (/dev/gpiomem).
	BackendGpiomem = "gpiomem"
	// BackendEmulator keeps all pins in memory, for hosts without gpio.
	BackendEmulator = "emulator"
)

const (
	BiasPullUp   = "pullup"
	BiasPullDown = "pulldown"
	BiasNone     = "none"
)

// GPIO is the interface implemented by the gpio backends.
type GPIO interface {
	// Input requests pin as input with the given bias (pullup|pulldown|none).
	Input(pin int, bias string) (port.DigitalIn, error)
	// Output requests pin as output, initially low.
	Output(pin int) (port.DigitalOut, error)
	// Close releases all requested pins and the backend.
	Close() error
}

// ADC is the interface implemented by the analog backends.
type ADC interface {
	// Analog returns the input of an adc channel.
	Analog(channel int) (port.AnalogIn, error)
	Close() error
}

// Open opens the gpio backend.
// chip is only used by the gpiod backend, e.g. gpiochip0.
func Open(backend, chip string) (GPIO, error) {
	switch backend {
	case BackendGpiod:
		c, err := OpenChip(chip)
		if err != nil {
			return nil, fmt.Errorf("can't open gpio chip %q: %w", chip, err)
		}
		return c, nil
	case BackendGpiomem:
		m, err := OpenMem()
		if err != nil {
			return nil, fmt.Errorf("can't open gpiomem: %w", err)
		}
		return m, nil
	case BackendEmulator:
		return NewEmulator(), nil
	default:
		return nil, fmt.Errorf("%w: unknown gpio backend %q", port.ErrInvalidParam, backend)
	}
}

func validBias(bias string) bool {
	switch bias {
	case BiasPullUp, BiasPullDown, BiasNone:
		return true
	}
	return false
}
