package app

import (
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"periph.io/x/conn/v3/physic"

	"cascade/pkg/app/config"
	"cascade/pkg/clock"
	"cascade/pkg/controller"
	"cascade/pkg/midi"
	"cascade/pkg/mqtt"
	"cascade/pkg/raspberry"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// midi is the midi output, nil if no port is configured
	midi midi.Out

	// gpio is the handler to the rpi gpio lines
	gpio raspberry.GPIO
	// adc is the handler to the analog inputs, nil if no pot is configured
	adc raspberry.ADC
	// emulator is set if the emulator backend is used
	emulator *raspberry.Emulator

	// clock is the millisecond clock used for debouncing
	clock clock.Clock

	// controller owns the buttons and pots
	controller *controller.Controller

	// stats counts the dispatched events
	stats stats

	// quit stops the poll loop, done signals that it is stopped
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	running bool
}

type stats struct {
	sync.Mutex
	events    uint64
	errors    uint64
	lastEvent *controller.Event
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:        fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:       mqtt.New(),
		clock:      clock.NewSystem(),
		controller: controller.New(),

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()

	app.running = true
	go app.poll()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.gpio, err = raspberry.Open(app.config.Hardware.GPIO, app.config.Hardware.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	if e, ok := app.gpio.(*raspberry.Emulator); ok {
		app.emulator = e
	}

	if app.needsADC() {
		if app.emulator != nil {
			app.adc = app.emulator
		} else {
			f := physic.Frequency(app.config.Hardware.SPIClock) * physic.KiloHertz
			adc, err := raspberry.OpenMCP3008(app.config.Hardware.SPI, f)
			if err != nil {
				debug.ErrorLog.Printf("can't open adc: %v", err)
				return err
			}
			app.adc = adc
		}
	}

	if err = app.buildControls(); err != nil {
		debug.ErrorLog.Printf("can't configure controls: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	if app.config.MIDI.Port != "" {
		if app.midi, err = midi.Open(app.config.MIDI.Port); err != nil {
			debug.ErrorLog.Printf("can't open midi output %v", err)
			return err
		}
	}

	// initDefaultRoutes should be always called last because it may access things like app.controller
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// needsADC reports whether any pot or analog mux is configured.
func (app *App) needsADC() bool {
	if len(app.config.Pots) > 0 {
		return true
	}
	for _, m := range app.config.Muxes {
		if m.Analog {
			return true
		}
	}
	return false
}

// Close stops the poll loop and releases midi, mqtt and hardware.
func (app *App) Close() error {
	app.stop()

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.midi != nil {
		_ = app.midi.Close()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
		app.mqtt.Close()
	}

	if app.adc != nil && app.emulator == nil {
		_ = app.adc.Close()
	}

	if app.gpio != nil {
		_ = app.gpio.Close()
	}
	return nil
}
