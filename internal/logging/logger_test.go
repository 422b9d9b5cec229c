package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

// resetLogging drops every module logger so each test starts uninitialized.
func resetLogging(t *testing.T) {
	t.Helper()
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig = Config{}
	isInitialized = false
	mutex.Unlock()
}

func enabledLevels(l *slog.Logger) [3]bool {
	h := l.Handler()
	ctx := context.Background()
	return [3]bool{
		h.Enabled(ctx, slog.LevelDebug),
		h.Enabled(ctx, slog.LevelInfo),
		h.Enabled(ctx, slog.LevelWarn),
	}
}

func TestModuleLevels(t *testing.T) {
	resetLogging(t)
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"led":  "debug",
			"api":  "warn",
			"nats": "bogus",
		},
	})

	tests := []struct {
		module string
		want   [3]bool // debug, info, warn
	}{
		{"led", [3]bool{true, true, true}},
		{"api", [3]bool{false, false, true}},
		{"nats", [3]bool{false, true, true}}, // unparsable level falls back to global
		{"config", [3]bool{false, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			if got := enabledLevels(GetLogger(tt.module)); got != tt.want {
				t.Errorf("enabled(debug, info, warn) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitializeUpdatesExistingLoggers(t *testing.T) {
	resetLogging(t)

	early := GetLogger("led")
	if enabledLevels(early)[0] {
		t.Fatal("logger created before Initialize should default to info")
	}
	handlerBefore := early.Handler()

	Initialize(Config{Level: "info", Modules: map[string]string{"led": "debug"}})
	if !handlerBefore.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("handler handed out before Initialize should follow the module LevelVar")
	}

	Initialize(Config{Level: "error"})
	if got := enabledLevels(GetLogger("led")); got != [3]bool{false, false, false} {
		t.Errorf("after re-initialize with error level, enabled = %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]*slog.Level{
		"debug":   ptr(slog.LevelDebug),
		"DEBUG":   ptr(slog.LevelDebug),
		"info":    ptr(slog.LevelInfo),
		"warn":    ptr(slog.LevelWarn),
		"warning": ptr(slog.LevelWarn),
		"Error":   ptr(slog.LevelError),
		"trace":   nil,
		"":        nil,
	}
	for input, want := range tests {
		got := parseLevel(input)
		switch {
		case want == nil && got != nil:
			t.Errorf("parseLevel(%q) = %v, want nil", input, *got)
		case want != nil && (got == nil || *got != *want):
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, *want)
		}
	}
}

func ptr(l slog.Level) *slog.Level { return &l }

func TestMultiHandlerPerHandlerLevels(t *testing.T) {
	var debugOut, infoOut bytes.Buffer
	multi := NewMultiHandler(nil,
		slog.NewTextHandler(&debugOut, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoOut, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(multi).With("module", "led")

	logger.Debug("blink write skipped", "led_id", 2)
	if !strings.Contains(debugOut.String(), "blink write skipped") {
		t.Errorf("debug handler output = %q", debugOut.String())
	}
	if infoOut.Len() != 0 {
		t.Errorf("info handler must not receive debug records, got %q", infoOut.String())
	}
}

func TestAddAttrToFields(t *testing.T) {
	fields := make(map[string]string)

	addAttrToFields(fields, slog.Int("led_id", 3), nil)
	addAttrToFields(fields, slog.String("path", "/sys/class/leds/x/trigger"), []string{"io"})
	addAttrToFields(fields, slog.Group("state", slog.String("color", "blue")), nil)
	addAttrToFields(fields, slog.Attr{}, nil)

	want := map[string]string{
		"LED_ID":      "3",
		"IO_PATH":     "/sys/class/leds/x/trigger",
		"STATE_COLOR": "blue",
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("fields[%q] = %q, want %q", key, fields[key], value)
		}
	}
	if len(fields) != len(want) {
		t.Errorf("fields = %v, want %d entries", fields, len(want))
	}
}

func TestMapLevelToPriority(t *testing.T) {
	if got := mapLevelToPriority(slog.LevelError); got != journal.PriErr {
		t.Errorf("error priority = %v", got)
	}
	if got := mapLevelToPriority(slog.LevelDebug); got != journal.PriDebug {
		t.Errorf("debug priority = %v", got)
	}
}

type failingHandler struct {
	slog.Handler
	err error
}

func (f failingHandler) Handle(context.Context, slog.Record) error { return f.err }

func TestMultiHandlerJoinsErrors(t *testing.T) {
	var buf bytes.Buffer
	ok := slog.NewTextHandler(&buf, nil)
	errJournal := errors.New("journal unreachable")
	bad := failingHandler{Handler: slog.NewTextHandler(io.Discard, nil), err: errJournal}

	multi := NewMultiHandler(nil, bad, ok)
	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "led applied", 0))
	if !errors.Is(err, errJournal) {
		t.Errorf("Handle error = %v, want %v", err, errJournal)
	}
	if !strings.Contains(buf.String(), "led applied") {
		t.Errorf("healthy handler must still receive the record, got %q", buf.String())
	}
}

func TestNewMultiHandlerCollapses(t *testing.T) {
	fallback := slog.NewTextHandler(io.Discard, nil)
	only := slog.NewJSONHandler(io.Discard, nil)

	if got := NewMultiHandler(fallback, nil, nil); got != fallback {
		t.Errorf("no handlers: got %T, want fallback", got)
	}
	if got := NewMultiHandler(fallback, nil, only); got != only {
		t.Errorf("one handler: got %T, want it unwrapped", got)
	}
	if _, ok := NewMultiHandler(fallback, only, only).(*MultiHandler); !ok {
		t.Error("two handlers should be wrapped in a MultiHandler")
	}
}

func TestMultiHandlerWithGroupAndAttrs(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiHandler(nil, slog.NewTextHandler(&a, nil), slog.NewTextHandler(&b, nil))
	logger := slog.New(multi).With("led_id", 3).WithGroup("state")
	logger.Info("applied", "color", "yellow")

	for name, out := range map[string]string{"first": a.String(), "second": b.String()} {
		if !strings.Contains(out, "led_id=3") || !strings.Contains(out, "state.color=yellow") {
			t.Errorf("%s handler output = %q", name, out)
		}
	}
}
