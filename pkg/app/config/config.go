package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// DefaultDebounce is used for buttons without debounce setting (ms).
	DefaultDebounce = 20
	// MaxMIDIChannel is the highest midi channel (0 based).
	MaxMIDIChannel = 15
)

// Config holds the application configuration. Attention!
// To make it possible to overwrite fields with the -overwrite command
// line option each of the struct fields must be in the format
// first letter uppercase -> followed by CamelCase as in the config file.
// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	PollIntervalInt int             `yaml:"pollinterval"`
	PollInterval    time.Duration   `yaml:"-"`
	Flag            FlagConfig      `yaml:"-"`
	Debug           DebugConfig     `yaml:"debug"`
	Webserver       WebserverConfig `yaml:"webserver"`
	MQTT            MQTTConfig      `yaml:"mqtt"`
	MIDI            MIDIConfig      `yaml:"midi"`
	Hardware        HardwareConfig  `yaml:"hardware"`
	Muxes           []MuxConfig     `yaml:"muxes"`
	Buttons         []ButtonConfig  `yaml:"buttons"`
	Pots            []PotConfig     `yaml:"pots"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
}

// MIDIConfig defines the midi output; an empty port disables midi.
type MIDIConfig struct {
	Port string `yaml:"port"`
}

// HardwareConfig defines the gpio and adc backends.
type HardwareConfig struct {
	// GPIO is the backend: gpiod|gpiomem|emulator
	GPIO string `yaml:"gpio"`
	// Chip is the gpio character device used by the gpiod backend.
	Chip string `yaml:"chip"`
	// SPI is the spi port of the MCP3008 adc ("" is the first port).
	SPI string `yaml:"spi"`
	// SPIClock is the spi clock in kHz.
	SPIClock int `yaml:"spiclock"`
}

// MuxConfig defines a multiplexer.
type MuxConfig struct {
	Name string `yaml:"name"`
	// Line is the adc channel (analog) or gpio (digital) of the shared line.
	Line int  `yaml:"line"`
	Pins int  `yaml:"pins"`
	// Analog muxes feed pots, digital muxes feed buttons.
	Analog bool `yaml:"analog"`
	// Selects are the gpios of S0, S1, S2 (and S3 for more than 8 pins).
	Selects []int `yaml:"selects"`
}

// ButtonConfig defines a button.
type ButtonConfig struct {
	Name string `yaml:"name"`
	// Pin is the gpio of the button, unused if Mux is set.
	Pin        int    `yaml:"pin"`
	Mux        string `yaml:"mux"`
	MuxChannel int    `yaml:"muxchannel"`
	// Bias is pullup|pulldown|none, default pullup.
	Bias string `yaml:"bias"`
	// ActiveHigh buttons are pressed at level high, the default is active low (pull-up wiring).
	ActiveHigh  bool          `yaml:"activehigh"`
	DebounceInt *int          `yaml:"debounce"`
	Debounce    time.Duration `yaml:"-"`
	Command     string        `yaml:"command"`
	Value       int           `yaml:"value"`
	Channel     int           `yaml:"channel"`
}

// PotConfig defines a pot.
type PotConfig struct {
	Name string `yaml:"name"`
	// Pin is the adc channel of the pot, unused if Mux is set.
	Pin        int    `yaml:"pin"`
	Mux        string `yaml:"mux"`
	MuxChannel int    `yaml:"muxchannel"`
	Command    string `yaml:"command"`
	Control    int    `yaml:"control"`
	Channel    int    `yaml:"channel"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		PollIntervalInt: 1,
		Flag:            FlagConfig{},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version":  true,
				"health":   true,
				"controls": true,
				"emulator": false,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			Topic:      "cascade",
		},
		Hardware: HardwareConfig{
			GPIO:     "gpiod",
			Chip:     "gpiochip0",
			SPI:      "",
			SPIClock: 1000,
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.setDurations()
	return c.Validate()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) setDurations() {
	c.PollInterval = time.Duration(c.PollIntervalInt) * time.Millisecond

	for i := range c.Buttons {
		d := DefaultDebounce
		if c.Buttons[i].DebounceInt != nil {
			d = *c.Buttons[i].DebounceInt
		}
		c.Buttons[i].Debounce = time.Duration(d) * time.Millisecond
	}
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.Debug.FlagString)
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}

// Mux returns the multiplexer called name.
func (c *Config) Mux(name string) (MuxConfig, bool) {
	for _, m := range c.Muxes {
		if m.Name == name {
			return m, true
		}
	}
	return MuxConfig{}, false
}
