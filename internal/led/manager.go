package led

import (
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/portled/internal/events"
	"github.com/smazurov/portled/internal/metrics"
)

// Status is a snapshot of one managed LED.
type Status struct {
	Mapping       Mapping
	State         State
	BlinkDegraded bool
}

// managedLED serializes all access to one controller.
type managedLED struct {
	mu      sync.Mutex
	ctrl    Controller
	mapping Mapping
}

// Manager owns the controllers of every LED on the chassis and applies state
// requests arriving on the event bus.
type Manager struct {
	factory     Factory
	eventBus    *events.Bus
	unsubscribe func()
	logger      *slog.Logger

	mu   sync.RWMutex
	leds map[int]*managedLED
}

// NewManager creates a new LED manager. Call Reload to bring LEDs under management.
func NewManager(factory Factory, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		factory:  factory,
		eventBus: eventBus,
		logger:   logger,
		leds:     make(map[int]*managedLED),
	}
}

// Start begins listening for LED state requests
func (m *Manager) Start() {
	m.unsubscribe = m.eventBus.Subscribe(func(e events.LedStateRequestedEvent) {
		m.handleRequest(e)
	})
	m.logger.Info("LED manager started", "leds", m.Count())
}

// Stop unsubscribes from the event bus
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.logger.Info("LED manager stopped")
}

// Reload reconciles the managed set with mappings. New and changed records
// get a fresh controller (which starts Off), unchanged ones keep theirs, and
// LEDs missing from mappings are dropped. A record whose controller cannot
// be constructed is skipped and its error returned; other LEDs are unaffected.
// Every controller leaving management is turned Off first so no LED stays
// lit without an owner.
func (m *Manager) Reload(mappings []Mapping) []error {
	m.mu.RLock()
	current := make(map[int]Mapping, len(m.leds))
	for id, l := range m.leds {
		current[id] = l.mapping
	}
	m.mu.RUnlock()

	var errs []error
	built := make(map[int]*managedLED)
	kept := make(map[int]bool, len(mappings))
	for _, mapping := range mappings {
		if existing, ok := current[mapping.ID]; ok && existing == mapping {
			kept[mapping.ID] = true
			continue
		}

		ctrl, err := m.factory(mapping)
		if err != nil {
			m.logger.Error("Failed to initialize LED, leaving it unmanaged",
				"led_id", mapping.ID,
				"error", err)
			errs = append(errs, err)
			continue
		}
		built[mapping.ID] = &managedLED{ctrl: ctrl, mapping: mapping}
	}

	var retired []*managedLED
	var removed []int
	m.mu.Lock()
	for id, l := range m.leds {
		if kept[id] {
			continue
		}
		retired = append(retired, l)
		if _, replaced := built[id]; replaced {
			continue
		}
		delete(m.leds, id)
		removed = append(removed, id)
		m.logger.Info("LED removed", "led_id", id)
	}
	for id, l := range built {
		m.leds[id] = l
		m.logger.Info("LED managed", "led_id", id, "blue_path", l.mapping.BluePath, "yellow_path", l.mapping.YellowPath)
	}
	m.mu.Unlock()

	for _, l := range retired {
		l.retire(m.logger)
	}
	for _, id := range removed {
		metrics.DeleteLEDMetrics(strconv.Itoa(id))
	}
	return errs
}

// Apply sets the state of one LED. Failures, including unknown ids, are
// published as LedErrorEvents as well as returned.
func (m *Manager) Apply(id int, s State) error {
	l, err := m.lookup(id)
	if err != nil {
		m.publishError(id, err)
		return err
	}

	l.mu.Lock()
	previous := l.ctrl.State()
	err = l.ctrl.SetState(s)
	degraded := l.ctrl.BlinkDegraded()
	l.mu.Unlock()

	if err != nil {
		m.logger.Warn("Failed to set LED state", "led_id", id, "state", s.String(), "error", err)
		m.publishError(id, err)
		return err
	}

	if previous != s {
		m.eventBus.Publish(events.LedStateChangedEvent{
			LedID:         id,
			Color:         s.Color.String(),
			Blink:         s.Blink.String(),
			PreviousColor: previous.Color.String(),
			PreviousBlink: previous.Blink.String(),
			BlinkDegraded: degraded,
			Timestamp:     time.Now().Format(time.RFC3339),
		})
	}
	return nil
}

func (m *Manager) publishError(id int, err error) {
	code := ErrCodeWrite
	var ledErr *Error
	if errors.As(err, &ledErr) {
		code = ledErr.Code
	}
	m.eventBus.Publish(events.LedErrorEvent{
		LedID:     id,
		Code:      code,
		Message:   err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Get returns the status of one LED.
func (m *Manager) Get(id int) (Status, error) {
	l, err := m.lookup(id)
	if err != nil {
		return Status{}, err
	}
	return l.status(), nil
}

// List returns the status of every managed LED ordered by ID.
func (m *Manager) List() []Status {
	m.mu.RLock()
	leds := make([]*managedLED, 0, len(m.leds))
	for _, l := range m.leds {
		leds = append(leds, l)
	}
	m.mu.RUnlock()

	result := make([]Status, 0, len(leds))
	for _, l := range leds {
		result = append(result, l.status())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Mapping.ID < result[j].Mapping.ID
	})
	return result
}

// Count returns the number of managed LEDs.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.leds)
}

// OffAll turns every managed LED off, returning the first error.
func (m *Manager) OffAll() error {
	var first error
	for _, st := range m.List() {
		if err := m.Apply(st.Mapping.ID, Off); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *Manager) lookup(id int) (*managedLED, error) {
	m.mu.RLock()
	l, ok := m.leds[id]
	m.mu.RUnlock()
	if !ok {
		return nil, newError(ErrCodeNotFound, id, "", "LED not managed", nil)
	}
	return l, nil
}

func (l *managedLED) status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{
		Mapping:       l.mapping,
		State:         l.ctrl.State(),
		BlinkDegraded: l.ctrl.BlinkDegraded(),
	}
}

// retire turns the LED off before its controller is discarded. Paths shared
// with a replacement controller end up Off, which is also its cached state.
func (l *managedLED) retire(logger *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ctrl.SetState(Off); err != nil {
		logger.Warn("Failed to turn off LED leaving management",
			"led_id", l.mapping.ID,
			"blue_path", l.mapping.BluePath,
			"yellow_path", l.mapping.YellowPath,
			"error", err)
	}
}

// handleRequest applies a state request from the event bus
func (m *Manager) handleRequest(e events.LedStateRequestedEvent) {
	s, err := ParseState(e.Color, e.Blink)
	if err != nil {
		m.logger.Warn("Ignoring invalid LED state request", "led_id", e.LedID, "error", err)
		m.publishError(e.LedID, newError(ErrCodeInvalidState, e.LedID, "", "invalid state request", err))
		return
	}

	m.logger.Debug("LED state requested", "led_id", e.LedID, "state", s.String(), "reason", e.Reason)
	// Apply logs and publishes failures itself.
	_ = m.Apply(e.LedID, s)
}
