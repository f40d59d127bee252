//go:build linux

package raspberry

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"

	"cascade/pkg/port"
)

// Mem is the gpio backend using the memory mapped registers of /dev/gpiomem.
type Mem struct {
	m    sync.Mutex
	pins map[int]*MemPin
}

// MemPin is a pin of the Mem backend.
type MemPin struct {
	gpioPin *gpio.Pin
}

// OpenMem maps the GPIO memory range from /dev/gpiomem.
func OpenMem() (*Mem, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &Mem{pins: map[int]*MemPin{}}, nil
}

// Close unmaps GPIO memory.
func (c *Mem) Close() error {
	return gpio.Close()
}

// Input creates a new input pin.
// The pin number provided is the BCM GPIO number.
func (c *Mem) Input(p int, bias string) (port.DigitalIn, error) {
	if !validBias(bias) {
		return nil, port.ErrInvalidParam
	}

	pin, err := c.newPin(p)
	if err != nil {
		return nil, err
	}

	pin.gpioPin.Input()
	switch bias {
	case BiasPullUp:
		pin.gpioPin.PullUp()
	case BiasPullDown:
		pin.gpioPin.PullDown()
	case BiasNone:
		pin.gpioPin.PullNone()
	}

	return pin, nil
}

// Output creates a new output pin, initially low.
func (c *Mem) Output(p int) (port.DigitalOut, error) {
	pin, err := c.newPin(p)
	if err != nil {
		return nil, err
	}

	pin.gpioPin.Low()
	pin.gpioPin.Output()
	return pin, nil
}

func (c *Mem) newPin(p int) (*MemPin, error) {
	c.m.Lock()
	defer c.m.Unlock()

	if _, ok := c.pins[p]; ok {
		return nil, fmt.Errorf("pin %v already used", p)
	}

	pin := &MemPin{gpioPin: gpio.NewPin(p)}
	c.pins[p] = pin
	return pin, nil
}

// Read pin state (high/low).
func (p *MemPin) Read() port.StateType {
	if p.gpioPin.Read() {
		return port.High
	}
	return port.Low
}

// Write pin state (high/low).
func (p *MemPin) Write(s port.StateType) {
	p.gpioPin.Write(gpio.Level(s == port.High))
}
