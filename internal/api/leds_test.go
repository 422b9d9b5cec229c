package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/smazurov/portled/internal/api/models"
	"github.com/smazurov/portled/internal/led"
)

// fakeLEDs is an in-memory LEDService.
type fakeLEDs struct {
	mu       sync.Mutex
	statuses map[int]led.Status
	applyErr error
	applied  []led.State
}

func newFakeLEDs(ids ...int) *fakeLEDs {
	f := &fakeLEDs{statuses: make(map[int]led.Status)}
	for _, id := range ids {
		f.statuses[id] = led.Status{
			Mapping: led.Mapping{
				ID:         id,
				BluePath:   "/sys/class/leds/port" + string(rune('0'+id)) + "_led:blue",
				YellowPath: "/sys/class/leds/port" + string(rune('0'+id)) + "_led:yellow",
			},
			State: led.Off,
		}
	}
	return f
}

func (f *fakeLEDs) Apply(id int, s led.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statuses[id]
	if !ok {
		return &led.Error{Code: led.ErrCodeNotFound, LedID: id, Message: "LED not managed"}
	}
	f.applied = append(f.applied, s)
	if f.applyErr != nil {
		return f.applyErr
	}
	st.State = s
	f.statuses[id] = st
	return nil
}

func (f *fakeLEDs) Get(id int) (led.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.statuses[id]
	if !ok {
		return led.Status{}, &led.Error{Code: led.ErrCodeNotFound, LedID: id, Message: "LED not managed"}
	}
	return st, nil
}

func (f *fakeLEDs) List() []led.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]led.Status, 0, len(f.statuses))
	for id := 0; len(out) < len(f.statuses); id++ {
		if st, ok := f.statuses[id]; ok {
			out = append(out, st)
		}
	}
	return out
}

func newTestAPI(t *testing.T, leds *fakeLEDs) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	s := &Server{api: api, leds: leds, logger: quietLogger()}
	s.registerRoutes()
	return api
}

func TestListLEDs(t *testing.T) {
	api := newTestAPI(t, newFakeLEDs(0, 1, 2))

	resp := api.Get("/api/leds")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var body models.LEDListData
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 3 || len(body.LEDs) != 3 {
		t.Fatalf("got %+v", body)
	}
	for i, l := range body.LEDs {
		if l.ID != i || l.Color != "off" || l.Blink != "off" {
			t.Errorf("LED %d = %+v", i, l)
		}
	}
}

func TestGetLED(t *testing.T) {
	api := newTestAPI(t, newFakeLEDs(0))

	resp := api.Get("/api/leds/0")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var body models.LEDData
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.BluePath != "/sys/class/leds/port0_led:blue" {
		t.Errorf("BluePath = %q", body.BluePath)
	}

	if resp := api.Get("/api/leds/7"); resp.Code != http.StatusNotFound {
		t.Errorf("unknown LED: status = %d, want 404", resp.Code)
	}
}

func TestSetLED(t *testing.T) {
	leds := newFakeLEDs(0)
	api := newTestAPI(t, leds)

	resp := api.Put("/api/leds/0", map[string]any{"color": "yellow", "blink": "slow"})
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	var body models.LEDData
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Color != "yellow" || body.Blink != "slow" {
		t.Errorf("got %+v", body)
	}

	want := led.State{Color: led.ColorYellow, Blink: led.BlinkSlow}
	if len(leds.applied) != 1 || leds.applied[0] != want {
		t.Errorf("applied = %v", leds.applied)
	}
}

func TestSetLEDOmittedBlinkIsSolid(t *testing.T) {
	leds := newFakeLEDs(0)
	api := newTestAPI(t, leds)

	if resp := api.Put("/api/leds/0", map[string]any{"color": "blue"}); resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	want := led.State{Color: led.ColorBlue, Blink: led.BlinkOff}
	if leds.applied[0] != want {
		t.Errorf("applied %v, want %v", leds.applied[0], want)
	}
}

func TestSetLEDErrors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     map[string]any
		applyErr error
		want     int
	}{
		{"unknown color", "0", map[string]any{"color": "green"}, nil, http.StatusUnprocessableEntity},
		{"unknown blink", "0", map[string]any{"color": "blue", "blink": "strobe"}, nil, http.StatusUnprocessableEntity},
		{"unknown LED", "9", map[string]any{"color": "blue"}, nil, http.StatusNotFound},
		{"negative id", "-1", map[string]any{"color": "blue"}, nil, http.StatusUnprocessableEntity},
		{
			"brightness write failed", "0", map[string]any{"color": "blue"},
			&led.Error{Code: led.ErrCodeWrite, LedID: 0, Message: "failed to set blue brightness"},
			http.StatusInternalServerError,
		},
		{
			"invalid state from controller", "0", map[string]any{"color": "blue"},
			&led.Error{Code: led.ErrCodeInvalidState, LedID: 0, Message: "unknown color"},
			http.StatusBadRequest,
		},
		{"untyped failure", "0", map[string]any{"color": "blue"}, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leds := newFakeLEDs(0)
			leds.applyErr = tt.applyErr
			api := newTestAPI(t, leds)

			resp := api.Put("/api/leds/"+tt.id, tt.body)
			if resp.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.Code, tt.want, resp.Body.String())
			}
		})
	}
}

func TestHealthReportsComponents(t *testing.T) {
	_, api := humatest.New(t)
	s := &Server{api: api, leds: newFakeLEDs(0), logger: quietLogger(), checks: []HealthCheck{
		{Name: "nats_server", Check: func() (bool, string) { return true, "2 clients" }},
		{Name: "nats_bridge", Check: func() (bool, string) { return false, "nats://127.0.0.1:4222" }},
	}}
	s.registerRoutes()

	resp := api.Get("/api/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("health status = %d", resp.Code)
	}
	var health models.HealthData
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "degraded" || health.Message != "nats_bridge unavailable" {
		t.Errorf("status/message = %q/%q", health.Status, health.Message)
	}
	want := []models.ComponentHealth{
		{Name: "nats_server", OK: true, Detail: "2 clients"},
		{Name: "nats_bridge", OK: false, Detail: "nats://127.0.0.1:4222"},
	}
	if len(health.Components) != len(want) {
		t.Fatalf("components = %+v", health.Components)
	}
	for i := range want {
		if health.Components[i] != want[i] {
			t.Errorf("component %d = %+v, want %+v", i, health.Components[i], want[i])
		}
	}
}

func TestHealthAndVersion(t *testing.T) {
	api := newTestAPI(t, newFakeLEDs(0, 1))

	resp := api.Get("/api/health")
	if resp.Code != http.StatusOK {
		t.Fatalf("health status = %d", resp.Code)
	}
	var health models.HealthData
	if err := json.Unmarshal(resp.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.LEDs != 2 {
		t.Errorf("health = %+v", health)
	}

	resp = api.Get("/api/version")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"version"`) {
		t.Errorf("version: status = %d, body = %s", resp.Code, resp.Body.String())
	}
}
