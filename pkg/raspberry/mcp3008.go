package raspberry

import (
	"fmt"
	"sync"

	"github.com/womat/debug"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"cascade/pkg/port"
)

// MCP3008Channels is the number of single ended inputs of the MCP3008.
const MCP3008Channels = 8

// MCP3008 is a 10 bit, 8 channel spi adc.
type MCP3008 struct {
	// m serializes spi transfers.
	m    sync.Mutex
	port spi.PortCloser
	conn spi.Conn
}

type mcp3008Channel struct {
	dev     *MCP3008
	channel int
	// last is returned if the transfer fails
	last int
}

// OpenMCP3008 opens the spi port (e.g. "" for the first port or "/dev/spidev0.0") with the clock frequency.
func OpenMCP3008(name string, f physic.Frequency) (*MCP3008, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("can't initialize periph host: %w", err)
	}

	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("can't open spi port %q: %w", name, err)
	}

	c, err := p.Connect(f, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("can't connect to spi port %q: %w", name, err)
	}

	return &MCP3008{port: p, conn: c}, nil
}

// Analog returns the single ended input channel (0..7).
func (d *MCP3008) Analog(channel int) (port.AnalogIn, error) {
	if channel < 0 || channel >= MCP3008Channels {
		return nil, fmt.Errorf("%w: mcp3008 channel %v", port.ErrInvalidParam, channel)
	}
	return &mcp3008Channel{dev: d, channel: channel}, nil
}

// Sample converts a single ended channel.
//  tx: start bit, single ended + channel, don't care
//  rx: -, null bit + B9 B8, B7..B0
func (d *MCP3008) Sample(channel int) (int, error) {
	d.m.Lock()
	defer d.m.Unlock()

	w := []byte{0x01, byte(0x80 | channel<<4), 0x00}
	r := make([]byte, len(w))
	if err := d.conn.Tx(w, r); err != nil {
		return 0, err
	}

	return decodeMCP3008(r), nil
}

func decodeMCP3008(r []byte) int {
	return int(r[1]&0x03)<<8 | int(r[2])
}

// Close releases the spi port.
func (d *MCP3008) Close() error {
	return d.port.Close()
}

func (c *mcp3008Channel) Read() int {
	v, err := c.dev.Sample(c.channel)
	if err != nil {
		debug.ErrorLog.Printf("read mcp3008 channel %v: %v", c.channel, err)
		return c.last
	}

	c.last = v
	return v
}
