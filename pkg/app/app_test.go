package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cascade/pkg/app/config"
	"cascade/pkg/clock"
	"cascade/pkg/controller"
)

// newTestApp initializes an app on the emulator backend with
// button pad1 on pin 4, pot volume on adc channel 0 and pots a/b on channels 0/1 of a mux on adc line 1.
func newTestApp(t *testing.T) (*App, *clock.Manual) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Hardware.GPIO = "emulator"
	cfg.Webserver.Webservices["emulator"] = true
	cfg.PollInterval = time.Millisecond
	cfg.Muxes = []config.MuxConfig{{Name: "m", Line: 1, Pins: 8, Analog: true, Selects: []int{15, 16, 14}}}
	cfg.Buttons = []config.ButtonConfig{{Name: "pad1", Pin: 4, Value: 36, Debounce: 20 * time.Millisecond}}
	cfg.Pots = []config.PotConfig{
		{Name: "volume", Pin: 0, Control: 7},
		{Name: "a", Mux: "m", MuxChannel: 0, Control: 20},
		{Name: "b", Mux: "m", MuxChannel: 1, Control: 21},
	}
	return startTestApp(t, cfg)
}

// startTestApp validates cfg and initializes the app with a manual clock.
func startTestApp(t *testing.T, cfg *config.Config) (*App, *clock.Manual) {
	t.Helper()

	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewManual(0)
	a.clock = clk

	if err := a.init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return a, clk
}

func do(t *testing.T, a *App, method, path, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.web.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

func (a *App) pollFor(clk *clock.Manual, d time.Duration) {
	for ms := time.Duration(0); ms < d; ms += time.Millisecond {
		a.pollOnce()
		clk.Advance(time.Millisecond)
	}
}

func TestVersion(t *testing.T) {
	a, _ := newTestApp(t)

	resp := do(t, a, http.MethodGet, "/version", "")
	var v map[string]string
	decode(t, resp, &v)
	if v["version"] != VERSION || v["description"] != MODULE {
		t.Fatalf("version = %v", v)
	}
}

func TestEmulatedButtonPress(t *testing.T) {
	a, clk := newTestApp(t)

	if resp := do(t, a, http.MethodPut, "/emulator/pins/4", `{"level":0}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set pin: %v", resp.StatusCode)
	}
	a.pollFor(clk, 30*time.Millisecond)

	var states []controller.State
	decode(t, do(t, a, http.MethodGet, "/controls", ""), &states)
	if len(states) != 4 || states[0].Name != "pad1" || !states[0].Pressed || states[0].Level != "low" {
		t.Fatalf("states = %+v", states)
	}

	var health struct {
		Events    uint64
		Backend   string
		LastEvent *controller.Event
	}
	decode(t, do(t, a, http.MethodGet, "/health", ""), &health)
	if health.Events != 1 || health.Backend != "emulator" || health.LastEvent == nil || health.LastEvent.Name != "pad1" {
		t.Fatalf("health = %+v", health)
	}
}

func TestEmulatedMuxedPots(t *testing.T) {
	a, _ := newTestApp(t)

	do(t, a, http.MethodPut, "/emulator/analog/1", `{"channel":1,"raw":640}`)
	events := a.controller.Poll()

	if len(events) != 1 || events[0].Name != "b" || events[0].Data1 != 21 || events[0].Data2 != 80 {
		t.Fatalf("events = %+v", events)
	}
}

func TestRemapRoute(t *testing.T) {
	a, _ := newTestApp(t)

	tests := []struct {
		path string
		body string
		want int
	}{
		{"/controls/pad1", `{"command":"cc","value":64,"channel":2}`, http.StatusNoContent},
		{"/controls/volume", `{"command":"note","value":1}`, http.StatusBadRequest},
		{"/controls/volume", `{"value":11,"channel":16}`, http.StatusBadRequest},
		{"/controls/volume", `{"value":11}`, http.StatusNoContent},
		{"/controls/nope", `{"value":1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		if resp := do(t, a, http.MethodPut, tt.path, tt.body); resp.StatusCode != tt.want {
			t.Fatalf("PUT %s %s: %v, want %v", tt.path, tt.body, resp.StatusCode, tt.want)
		}
	}

	var states []controller.State
	decode(t, do(t, a, http.MethodGet, "/controls", ""), &states)
	if s := states[0]; s.Command != 0xb0 || s.Data1 != 64 || s.Channel != 2 {
		t.Fatalf("pad1 = %+v", s)
	}
	if s := states[1]; s.Command != 0xb0 || s.Data1 != 11 {
		t.Fatalf("volume = %+v", s)
	}
}

func TestPollLoopStops(t *testing.T) {
	a, _ := newTestApp(t)

	a.running = true
	go a.poll()
	time.Sleep(5 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		a.stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("poll loop didn't stop")
	}
}

// newPadsApp initializes an app with pads pad1..pad3 on channels 0..2 of a digital mux on pin 17.
func newPadsApp(t *testing.T) (*App, *clock.Manual) {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Hardware.GPIO = "emulator"
	cfg.Webserver.Webservices["emulator"] = true
	cfg.Muxes = []config.MuxConfig{{Name: "pads", Line: 17, Pins: 8, Selects: []int{22, 23, 24}}}
	for i, name := range []string{"pad1", "pad2", "pad3"} {
		cfg.Buttons = append(cfg.Buttons, config.ButtonConfig{
			Name: name, Mux: "pads", MuxChannel: i, Value: 36 + i, Debounce: 20 * time.Millisecond,
		})
	}
	return startTestApp(t, cfg)
}

func TestDigitalMuxPadsAreIndependent(t *testing.T) {
	a, clk := newPadsApp(t)

	if events := a.controller.Poll(); len(events) != 0 {
		t.Fatalf("idle events = %+v", events)
	}

	if resp := do(t, a, http.MethodPut, "/emulator/pins/17", `{"channel":1,"level":0}`); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("set pad2: %v", resp.StatusCode)
	}

	var events []controller.Event
	for ms := 0; ms < 30; ms++ {
		events = append(events, a.controller.Poll()...)
		clk.Advance(time.Millisecond)
	}
	if len(events) != 1 || events[0].Name != "pad2" || !events[0].Pressed || events[0].Data1 != 37 {
		t.Fatalf("events after pressing pad2 = %+v", events)
	}

	var level struct{ Level int }
	decode(t, do(t, a, http.MethodGet, "/emulator/pins/17?channel=1", ""), &level)
	if level.Level != 0 {
		t.Fatalf("pin 17 channel 1 = %v", level.Level)
	}
	decode(t, do(t, a, http.MethodGet, "/emulator/pins/17?channel=2", ""), &level)
	if level.Level != 1 {
		t.Fatalf("pin 17 channel 2 = %v", level.Level)
	}

	var states []controller.State
	decode(t, do(t, a, http.MethodGet, "/controls", ""), &states)
	for _, s := range states {
		if s.Pressed != (s.Name == "pad2") || s.Pin != 17 {
			t.Fatalf("state = %+v", s)
		}
	}
}

func TestPlainPinRejectsChannel(t *testing.T) {
	a, _ := newTestApp(t)

	if resp := do(t, a, http.MethodPut, "/emulator/pins/4", `{"channel":2,"level":0}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %v", resp.StatusCode)
	}
}

func TestCloseStopsMQTTService(t *testing.T) {
	a, _ := newTestApp(t)

	done := make(chan struct{})
	go func() {
		a.mqtt.Service()
		close(done)
	}()

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mqtt service didn't stop")
	}
}
