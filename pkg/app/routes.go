package app

// initDefaultRoutes initializes the applications default routes.
//  These are the routes which always are the same in every application.
//  Things like version, health, controls ...
//  The emulator routes are only available with the emulator backend.
func (app *App) initDefaultRoutes() {
	api := app.web.Group("/")
	if app.config.Webserver.Webservices["version"] {
		api.Get("/version", app.HandleVersion())
	}
	if app.config.Webserver.Webservices["health"] {
		api.Get("/health", app.HandleHealth())
	}
	if app.config.Webserver.Webservices["controls"] {
		api.Get("/controls", app.HandleControls())
		api.Put("/controls/:name", app.HandleRemap())
	}
	if app.config.Webserver.Webservices["emulator"] && app.emulator != nil {
		api.Get("/emulator/pins/:pin", app.HandleEmulatorLevel())
		api.Put("/emulator/pins/:pin", app.HandleEmulatorPin())
		api.Put("/emulator/analog/:line", app.HandleEmulatorAnalog())
	}
}
