package nats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/portled/internal/events"
	"github.com/smazurov/portled/internal/led"
)

// AckMessage is the reply to a set request carrying a reply subject.
// Accepted means the request was queued for the LED manager, not that the
// hardware write already happened.
type AckMessage struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
}

// Bridge connects the NATS subject tree to the event bus. Set requests
// become LedStateRequestedEvents; state changes and errors on the bus are
// published back to NATS.
type Bridge struct {
	url      string
	eventBus *events.Bus
	logger   *slog.Logger

	mu        sync.Mutex
	conn      *nats.Conn
	subs      []*nats.Subscription
	busUnsubs []func()
}

// NewBridge creates a new NATS-to-EventBus bridge.
func NewBridge(url string, eventBus *events.Bus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		url:      url,
		eventBus: eventBus,
		logger:   logger.With("component", "nats-bridge"),
	}
}

// Start connects to NATS and wires both directions.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.url,
		nats.Name("portled-bridge"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", b.url, err)
	}
	b.conn = conn

	sub, err := conn.Subscribe(SubjectAllSet, b.handleSet)
	if err != nil {
		b.cleanup()
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectAllSet, err)
	}
	b.subs = append(b.subs, sub)

	b.busUnsubs = append(b.busUnsubs,
		b.eventBus.Subscribe(func(e events.LedStateChangedEvent) {
			b.publish(SubjectLedState(e.LedID), StateMessage{
				LedID:         e.LedID,
				Color:         e.Color,
				Blink:         e.Blink,
				PreviousColor: e.PreviousColor,
				PreviousBlink: e.PreviousBlink,
				BlinkDegraded: e.BlinkDegraded,
				Timestamp:     e.Timestamp,
			})
		}),
		b.eventBus.Subscribe(func(e events.LedErrorEvent) {
			b.publish(SubjectLedError(e.LedID), ErrorMessage{
				LedID:     e.LedID,
				Code:      e.Code,
				Message:   e.Message,
				Timestamp: e.Timestamp,
			})
		}),
	)

	b.logger.Info("NATS bridge started", "url", b.url, "subject", SubjectAllSet)
	return nil
}

// handleSet turns an incoming set message into a state request.
func (b *Bridge) handleSet(msg *nats.Msg) {
	id, err := LedIDFromSubject(msg.Subject)
	if err != nil {
		b.reject(msg, -1, err)
		return
	}

	m, err := UnmarshalSet(msg.Data)
	if err != nil {
		b.reject(msg, id, fmt.Errorf("malformed set message: %w", err))
		return
	}
	if m.LedID != nil && *m.LedID != id {
		b.reject(msg, id, fmt.Errorf("led_id %d does not match subject %s", *m.LedID, msg.Subject))
		return
	}
	if _, err := led.ParseState(m.Color, m.Blink); err != nil {
		b.reject(msg, id, err)
		return
	}

	timestamp := m.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format(time.RFC3339)
	}
	b.eventBus.Publish(events.LedStateRequestedEvent{
		LedID:     id,
		Color:     m.Color,
		Blink:     m.Blink,
		Reason:    m.Reason,
		Timestamp: timestamp,
	})
	b.logger.Debug("Forwarded LED request", "led_id", id, "color", m.Color, "blink", m.Blink, "reason", m.Reason)
	b.ack(msg, AckMessage{Accepted: true})
}

func (b *Bridge) reject(msg *nats.Msg, id int, err error) {
	b.logger.Warn("Rejected LED request", "subject", msg.Subject, "error", err)
	if id >= 0 {
		b.eventBus.Publish(events.LedErrorEvent{
			LedID:     id,
			Code:      led.ErrCodeInvalidState,
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	b.ack(msg, AckMessage{Error: err.Error()})
}

func (b *Bridge) ack(msg *nats.Msg, a AckMessage) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := msg.Respond(data); err != nil {
		b.logger.Warn("Failed to reply to LED request", "subject", msg.Subject, "error", err)
	}
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func (b *Bridge) publish(subject string, m marshaler) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := m.Marshal()
	if err != nil {
		b.logger.Warn("Failed to marshal message", "subject", subject, "error", err)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		b.logger.Warn("Failed to publish message", "subject", subject, "error", err)
	}
}

// cleanup unsubscribes and closes connection. Caller holds b.mu.
func (b *Bridge) cleanup() {
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Stop closes the bridge connection.
func (b *Bridge) Stop() {
	// Bus handlers take b.mu in publish, so detach them first.
	b.mu.Lock()
	busUnsubs := b.busUnsubs
	b.busUnsubs = nil
	b.mu.Unlock()
	for _, unsub := range busUnsubs {
		unsub()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.cleanup()
	b.logger.Info("NATS bridge stopped")
}

// IsConnected returns true if the bridge is connected to NATS.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}
