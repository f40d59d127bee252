//go:build !linux

package raspberry

import (
	"errors"

	"cascade/pkg/port"
)

var errNotSupported = errors.New("gpio backend is only supported on linux, use the emulator backend")

type Chip struct{}

func OpenChip(string) (*Chip, error) { return nil, errNotSupported }

func (c *Chip) Input(int, string) (port.DigitalIn, error) { return nil, errNotSupported }
func (c *Chip) Output(int) (port.DigitalOut, error)       { return nil, errNotSupported }
func (c *Chip) Close() error                              { return nil }

type Mem struct{}

func OpenMem() (*Mem, error) { return nil, errNotSupported }

func (c *Mem) Input(int, string) (port.DigitalIn, error) { return nil, errNotSupported }
func (c *Mem) Output(int) (port.DigitalOut, error)       { return nil, errNotSupported }
func (c *Mem) Close() error                              { return nil }
