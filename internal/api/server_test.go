package api

import (
	"bufio"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/portled/internal/events"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, bus *events.Bus) *httptest.Server {
	t.Helper()
	s := NewServer(&Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
		CORSOrigin:   "*",
		LEDs:         newFakeLEDs(0, 1),
		EventBus:     bus,
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "portled_led_color 0\n")
		}),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url, auth string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t, events.New())

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"health is public", "/api/health", "", http.StatusOK},
		{"version is public", "/api/version", "", http.StatusOK},
		{"metrics are public", "/metrics", "", http.StatusOK},
		{"leds need auth", "/api/leds", "", http.StatusUnauthorized},
		{"wrong password", "/api/leds", basic("admin", "nope"), http.StatusUnauthorized},
		{"bearer rejected", "/api/leds", "Bearer abc", http.StatusUnauthorized},
		{"garbage credentials", "/api/leds", "Basic !!!", http.StatusUnauthorized},
		{"valid credentials", "/api/leds", basic("admin", "secret"), http.StatusOK},
		{"query credentials", "/api/leds/0?auth=" + base64.StdEncoding.EncodeToString([]byte("admin:secret")), "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path, tt.auth)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, events.New())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/leds/0", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

// openStream connects to the SSE endpoint and returns a function that
// waits for the next line starting with prefix.
func openStream(t *testing.T, url string) func(prefix string) string {
	t.Helper()
	resp := get(t, url, basic("admin", "secret"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	return func(prefix string) string {
		t.Helper()
		timeout := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed waiting for %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-timeout:
				t.Fatalf("timeout waiting for %q", prefix)
			}
		}
	}
}

func TestSSEForwardsLEDEvents(t *testing.T) {
	bus := events.New()
	ts := newTestServer(t, bus)
	next := openStream(t, ts.URL+"/api/events")

	if line := next("data:"); !strings.Contains(line, "SSE connection established") {
		t.Fatalf("first event = %s", line)
	}

	bus.Publish(events.LedStateChangedEvent{LedID: 1, Color: "blue", Blink: "fast", PreviousColor: "off", PreviousBlink: "off"})

	if line := next("event:"); !strings.Contains(line, "led-state-changed") {
		t.Errorf("event line = %s", line)
	}
	if line := next("data:"); !strings.Contains(line, `"led_id":1`) || !strings.Contains(line, `"blink":"fast"`) {
		t.Errorf("data line = %s", line)
	}
}

func TestSSEFiltersByLED(t *testing.T) {
	bus := events.New()
	ts := newTestServer(t, bus)
	next := openStream(t, ts.URL+"/api/events?led_id=2,4")

	next("data:")
	bus.Publish(events.LedErrorEvent{LedID: 1, Code: "WRITE_FAILED", Message: "skipped"})
	bus.Publish(events.LedErrorEvent{LedID: 4, Code: "LED_NOT_FOUND", Message: "kept"})

	if line := next("event:"); !strings.Contains(line, "led-error") {
		t.Errorf("event line = %s", line)
	}
	if line := next("data:"); !strings.Contains(line, `"led_id":4`) || !strings.Contains(line, "kept") {
		t.Errorf("data line = %s", line)
	}
}

func TestSSERequiresAuth(t *testing.T) {
	ts := newTestServer(t, events.New())
	if resp := get(t, ts.URL+"/api/events", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
