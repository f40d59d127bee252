package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"cascade/pkg/app/config"
	"cascade/pkg/controller"
	"cascade/pkg/midi"
	"cascade/pkg/port"
)

// remapRequest is the body of PUT /controls/:name.
type remapRequest struct {
	Command string `json:"command"`
	Value   int    `json:"value"`
	Channel int    `json:"channel"`
}

// pinRequest is the body of PUT /emulator/pins/:pin.
// Channel selects the mux channel of a digital mux line.
type pinRequest struct {
	Channel int `json:"channel"`
	Level   int `json:"level"`
}

// analogRequest is the body of PUT /emulator/analog/:line.
type analogRequest struct {
	Channel int `json:"channel"`
	Raw     int `json:"raw"`
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleControls returns the current state of all buttons and pots.
func (app *App) HandleControls() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request controls")

		return ctx.JSON(app.controller.Snapshot())
	}
}

// HandleRemap changes the midi mapping of a control at runtime.
// Body example: {"command":"cc","value":64,"channel":2}
func (app *App) HandleRemap() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		name := ctx.Params("name")
		debug.InfoLog.Printf("web request remap %s", name)

		kind, err := app.controller.Kind(name)
		if err != nil {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		var req remapRequest
		if err = ctx.BodyParser(&req); err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		def := byte(midi.StatusNoteOn)
		if kind == controller.KindPot {
			def = midi.StatusControlChange
		}

		command, err := config.CommandCode(req.Command, def)
		if err == nil && kind == controller.KindPot && command != midi.StatusControlChange {
			err = errors.New("only cc is supported for pots")
		}
		if err == nil && (req.Value < 0 || req.Value > midi.MaxData || req.Channel < 0 || req.Channel > config.MaxMIDIChannel) {
			err = errors.New("value or channel out of range")
		}
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		if err = app.controller.Remap(name, command, byte(req.Value), byte(req.Channel)); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, controller.ErrUnknownControl) {
				status = http.StatusNotFound
			}
			return ctx.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		return ctx.SendStatus(http.StatusNoContent)
	}
}

// HandleEmulatorLevel returns the level of an emulated pin.
// The mux channel of a digital mux line is passed as query, e.g. /emulator/pins/17?channel=1
func (app *App) HandleEmulatorLevel() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		pin, err := strconv.Atoi(ctx.Params("pin"))
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		channel, err := strconv.Atoi(ctx.Query("channel", "0"))
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		level, err := app.emulator.Level(pin, channel)
		if err != nil {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		return ctx.JSON(fiber.Map{"pin": pin, "channel": channel, "level": int(level)})
	}
}

// HandleEmulatorPin sets the level of an emulated input pin (and mux channel).
// Body example: {"channel":1,"level":0}
func (app *App) HandleEmulatorPin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		pin, err := strconv.Atoi(ctx.Params("pin"))
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var req pinRequest
		if err = ctx.BodyParser(&req); err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		level := port.Level(req.Level)
		if level == port.Invalid {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "level must be 0 or 1"})
		}

		debug.DebugLog.Printf("web request emulator pin %v/%v: %v", pin, req.Channel, level)
		if err = app.emulator.Set(pin, req.Channel, level); err != nil {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}

		return ctx.SendStatus(http.StatusNoContent)
	}
}

// HandleEmulatorAnalog sets the sample of an emulated adc channel (and mux channel).
func (app *App) HandleEmulatorAnalog() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		line, err := strconv.Atoi(ctx.Params("line"))
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var req analogRequest
		if err = ctx.BodyParser(&req); err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		debug.DebugLog.Printf("web request emulator analog %v/%v: %v", line, req.Channel, req.Raw)
		app.emulator.SetRaw(line, req.Channel, req.Raw)

		return ctx.SendStatus(http.StatusNoContent)
	}
}
