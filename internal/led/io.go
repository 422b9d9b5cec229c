package led

import (
	"path/filepath"
	"strconv"

	"github.com/smazurov/portled/internal/logging"
	"github.com/smazurov/portled/internal/metrics"
)

// IO drives one bi-color LED unit through its sysfs attribute files.
//
// All fallible configuration checks happen in NewIO. Afterwards SetState only
// fails when a brightness write fails. Blink attributes are best effort:
// older hardware revisions do not expose them, so failures there are logged
// and the channel falls back to solid.
//
// IO is not safe for concurrent use; Manager serializes access per LED.
type IO struct {
	id            int
	blue          *channel
	yellow        *channel
	current       State
	blinkDegraded bool
	limit         int
	logger        logging.Logger
}

// Option configures an IO.
type Option func(*IO)

// WithLogger overrides the "led" module logger.
func WithLogger(logger logging.Logger) Option {
	return func(l *IO) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBrightnessLimit sets the largest max_brightness value accepted at
// construction. Default is DefaultBrightnessLimit.
func WithBrightnessLimit(limit int) Option {
	return func(l *IO) {
		if limit > 0 {
			l.limit = limit
		}
	}
}

// NewIO validates the mapping, reads each channel's max brightness and
// forces both channels off. No IO is returned on error.
func NewIO(m Mapping, opts ...Option) (*IO, error) {
	l := &IO{
		id:     m.ID,
		limit:  DefaultBrightnessLimit,
		logger: logging.GetLogger("led"),
	}
	for _, opt := range opts {
		opt(l)
	}

	if m.ID < 0 {
		return nil, newError(ErrCodeConfig, m.ID, "", "negative LED id", nil)
	}
	if m.BluePath == "" {
		return nil, newError(ErrCodeConfig, m.ID, "", "blue path not configured", nil)
	}
	if m.YellowPath == "" {
		return nil, newError(ErrCodeConfig, m.ID, "", "yellow path not configured", nil)
	}

	var err error
	if l.blue, err = l.openChannel(ColorBlue, m.BluePath); err != nil {
		return nil, err
	}
	if l.yellow, err = l.openChannel(ColorYellow, m.YellowPath); err != nil {
		return nil, err
	}

	if err := l.allOff(); err != nil {
		return nil, err
	}
	l.current = Off
	metrics.SetColor(l.label(), int(ColorOff))

	l.logger.Debug("LED initialized",
		"led_id", l.id,
		"blue_path", l.blue.path,
		"blue_max_brightness", l.blue.maxBrightness,
		"yellow_path", l.yellow.path,
		"yellow_max_brightness", l.yellow.maxBrightness)
	return l, nil
}

func (l *IO) openChannel(color Color, path string) (*channel, error) {
	maxBrightness, err := readMaxBrightness(path, l.limit)
	if err != nil {
		return nil, newError(ErrCodeConfig, l.id, filepath.Join(path, fileMaxBrightness),
			"invalid "+color.String()+" max brightness", err)
	}
	return &channel{color: color, path: path, maxBrightness: maxBrightness}, nil
}

// ID returns the LED index.
func (l *IO) ID() int {
	return l.id
}

// State returns the last successfully applied state.
func (l *IO) State() State {
	return l.current
}

// BlinkDegraded reports whether any blink attribute write failed while
// applying the current state.
func (l *IO) BlinkDegraded() bool {
	return l.blinkDegraded
}

// MaxBrightness returns the cached max brightness of a channel, or 0 for ColorOff.
func (l *IO) MaxBrightness(color Color) int {
	if ch := l.channelFor(color); ch != nil {
		return ch.maxBrightness
	}
	return 0
}

// Paths returns the configured base paths as a Mapping.
func (l *IO) Paths() Mapping {
	return Mapping{ID: l.id, BluePath: l.blue.path, YellowPath: l.yellow.path}
}

// SetState applies s. Requesting the current state is a no-op. Otherwise
// both channels are turned off before the selected one is lit, and the
// cached state only changes when every brightness write succeeded.
func (l *IO) SetState(s State) error {
	if s == l.current {
		return nil
	}

	var target *channel
	switch s.Color {
	case ColorOff:
	case ColorBlue, ColorYellow:
		if s.Blink < BlinkOff || s.Blink > BlinkFast {
			return newError(ErrCodeInvalidState, l.id, "", "unknown blink rate "+s.Blink.String(), nil)
		}
		target = l.channelFor(s.Color)
	default:
		return newError(ErrCodeInvalidState, l.id, "", "unknown color "+s.Color.String(), nil)
	}

	degraded := false
	if !l.setBlink(l.blue, BlinkOff) {
		degraded = true
	}
	if err := l.setBrightness(l.blue, 0); err != nil {
		return err
	}
	if !l.setBlink(l.yellow, BlinkOff) {
		degraded = true
	}
	if err := l.setBrightness(l.yellow, 0); err != nil {
		return err
	}

	if target != nil {
		if !l.setBlink(target, s.Blink) {
			degraded = true
		}
		if err := l.setBrightness(target, target.maxBrightness); err != nil {
			return err
		}
	}

	previous := l.current
	l.current = s
	l.blinkDegraded = degraded

	metrics.RecordTransition(l.label(), s.Color.String(), s.Blink.String())
	metrics.SetColor(l.label(), int(s.Color))
	l.logger.Debug("LED state applied", "led_id", l.id, "from", previous.String(), "to", s.String())
	return nil
}

func (l *IO) channelFor(color Color) *channel {
	switch color {
	case ColorBlue:
		return l.blue
	case ColorYellow:
		return l.yellow
	default:
		return nil
	}
}

func (l *IO) allOff() error {
	l.setBlink(l.blue, BlinkOff)
	if err := l.setBrightness(l.blue, 0); err != nil {
		return err
	}
	l.setBlink(l.yellow, BlinkOff)
	return l.setBrightness(l.yellow, 0)
}

func (l *IO) setBrightness(ch *channel, value int) error {
	path := ch.file(fileBrightness)
	if err := writeSysfs(path, strconv.Itoa(value)); err != nil {
		metrics.RecordWriteError(l.label(), fileBrightness)
		return newError(ErrCodeWrite, l.id, path, "failed to set "+ch.color.String()+" brightness", err)
	}
	return nil
}

// setBlink enables the timer trigger and writes the delays for rate. It
// stops at the first failing attribute and reports false.
func (l *IO) setBlink(ch *channel, rate Blink) bool {
	delay := rate.Delay()
	writes := []struct {
		file  string
		value string
	}{
		{fileTrigger, triggerTimer},
		{fileDelayOn, delay},
		{fileDelayOff, delay},
	}

	for _, w := range writes {
		path := ch.file(w.file)
		if err := writeSysfs(path, w.value); err != nil {
			l.logger.Error("Failed to set LED blink, falling back to solid",
				"led_id", l.id,
				"path", path,
				"error", err)
			metrics.RecordWriteError(l.label(), w.file)
			metrics.RecordBlinkFallback(l.label())
			return false
		}
	}
	return true
}

func (l *IO) label() string {
	return strconv.Itoa(l.id)
}
