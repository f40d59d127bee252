//go:build linux

package raspberry

import (
	"sync"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"cascade/pkg/port"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
	m         sync.Mutex
	lines     map[int]*gpiod.Line
}

// Line is a requested input or output line.
type Line struct {
	gpiodLine *gpiod.Line
	// lastValue is returned if the line can't be read
	lastValue port.StateType
}

// OpenChip opens a GPIO character device, e.g. gpiochip0.
func OpenChip(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c, lines: map[int]*gpiod.Line{}}, nil
}

// Input requests control of a single input line.
//   If granted, control is maintained until the Chip is closed.
func (c *Chip) Input(offset int, bias string) (port.DigitalIn, error) {
	var opts []gpiod.LineReqOption

	switch bias {
	case BiasPullUp:
		opts = []gpiod.LineReqOption{gpiod.AsInput, gpiod.WithPullUp}
	case BiasPullDown:
		opts = []gpiod.LineReqOption{gpiod.AsInput, gpiod.WithPullDown}
	case BiasNone:
		opts = []gpiod.LineReqOption{gpiod.AsInput}
	default:
		return nil, port.ErrInvalidParam
	}

	l, err := c.request(offset, opts...)
	if err != nil {
		return nil, err
	}

	line := &Line{gpiodLine: l, lastValue: port.Invalid}
	line.lastValue = line.Read()
	return line, nil
}

// Output requests control of a single output line, initially low.
func (c *Chip) Output(offset int) (port.DigitalOut, error) {
	l, err := c.request(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &Line{gpiodLine: l, lastValue: port.Low}, nil
}

func (c *Chip) request(offset int, opts ...gpiod.LineReqOption) (*gpiod.Line, error) {
	c.m.Lock()
	defer c.m.Unlock()

	if _, ok := c.lines[offset]; ok {
		return nil, port.ErrInvalidParam
	}

	l, err := c.gpiodChip.RequestLine(offset, opts...)
	if err != nil {
		return nil, err
	}

	c.lines[offset] = l
	return l, nil
}

// Read returns the level of the line.
// A failing read is logged and the last known level is returned.
func (l *Line) Read() port.StateType {
	v, err := l.gpiodLine.Value()
	if err != nil {
		debug.ErrorLog.Printf("read line %v: %v", l.gpiodLine.Offset(), err)
		return l.lastValue
	}

	l.lastValue = port.Level(v)
	return l.lastValue
}

// Write sets the level of an output line.
func (l *Line) Write(s port.StateType) {
	v := 0
	if s == port.High {
		v = 1
	}

	if err := l.gpiodLine.SetValue(v); err != nil {
		debug.ErrorLog.Printf("write line %v: %v", l.gpiodLine.Offset(), err)
		return
	}
	l.lastValue = s
}

// Close releases all requested lines and the Chip.
func (c *Chip) Close() error {
	c.m.Lock()
	defer c.m.Unlock()

	for offset, l := range c.lines {
		if err := l.Close(); err != nil {
			debug.ErrorLog.Printf("close line %v: %v", offset, err)
		}
	}
	c.lines = map[int]*gpiod.Line{}

	return c.gpiodChip.Close()
}
