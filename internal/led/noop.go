package led

import "github.com/smazurov/portled/internal/logging"

// noop implements Controller without touching the filesystem. It still
// tracks state so the API and event stream behave as on hardware.
type noop struct {
	id      int
	current State
	logger  logging.Logger
}

// newNoop creates a new no-op LED controller
func newNoop(id int, logger logging.Logger) *noop {
	return &noop{
		id:      id,
		current: Off,
		logger:  logger,
	}
}

func (n *noop) ID() int {
	return n.id
}

func (n *noop) State() State {
	return n.current
}

// SetState logs the request and records it without any hardware access
func (n *noop) SetState(s State) error {
	if s == n.current {
		return nil
	}
	if s.Color != ColorOff && s.Color != ColorBlue && s.Color != ColorYellow {
		return newError(ErrCodeInvalidState, n.id, "", "unknown color "+s.Color.String(), nil)
	}
	n.logger.Debug("LED control not available (no-op)",
		"led_id", n.id,
		"color", s.Color.String(),
		"blink", s.Blink.String())
	n.current = s
	return nil
}

func (n *noop) BlinkDegraded() bool {
	return false
}
