package app

import (
	"time"

	"github.com/womat/debug"

	"cascade/pkg/controller"
	"cascade/pkg/midi"
)

// poll calls the controller every poll interval and dispatches the events.
//  It's the only go routine reading the inputs, so mux select and read are never interleaved.
func (app *App) poll() {
	defer close(app.done)

	ticker := time.NewTicker(app.config.PollInterval)
	defer ticker.Stop()

	debug.InfoLog.Printf("polling controls every %v", app.config.PollInterval)

	for {
		select {
		case <-app.quit:
			return
		case <-ticker.C:
			app.pollOnce()
		}
	}
}

// pollOnce polls all controls once.
func (app *App) pollOnce() {
	for _, e := range app.controller.Poll() {
		app.dispatch(e)
	}
}

// stop terminates the poll loop and waits until it has returned.
func (app *App) stop() {
	app.once.Do(func() {
		close(app.quit)
		if app.running {
			<-app.done
		}
	})
}

// dispatch sends an event to the midi output and the mqtt broker.
func (app *App) dispatch(e controller.Event) {
	app.stats.Lock()
	app.stats.events++
	app.stats.lastEvent = &e
	app.stats.Unlock()

	debug.TraceLog.Printf("event %+v", e)

	if app.midi != nil {
		if err := app.sendMIDI(e); err != nil {
			app.stats.Lock()
			app.stats.errors++
			app.stats.Unlock()
			debug.ErrorLog.Printf("send midi for %s: %v", e.Name, err)
		}
	}

	if app.mqtt.Connected() {
		if err := app.mqtt.Publish(app.config.MQTT.Topic+"/"+e.Name, e); err != nil {
			debug.ErrorLog.Printf("publish %s: %v", e.Name, err)
		}
	}
}

func (app *App) sendMIDI(e controller.Event) error {
	var err error
	var msg []byte

	switch e.Kind {
	case controller.KindButton:
		msg, err = midi.Button(e.Command, e.Data1, e.Channel, e.Pressed)
	case controller.KindPot:
		msg, err = midi.Pot(e.Command, e.Data1, e.Channel, e.Data2)
	}

	if err != nil || msg == nil {
		return err
	}
	return app.midi.Send(msg)
}
