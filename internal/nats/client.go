package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Client talks to a running portled service over NATS. It is what the CLI
// and external status-decision services use to drive LEDs remotely.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// Connect dials url. name identifies the connection in server monitoring.
func Connect(url, name string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &Client{
		conn:   conn,
		logger: logger.With("component", "nats-client"),
	}, nil
}

// Set requests a state for one LED and waits for the service to accept it.
func (c *Client) Set(ctx context.Context, ledID int, m SetMessage) error {
	if m.Timestamp == "" {
		m.Timestamp = time.Now().Format(time.RFC3339)
	}
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	reply, err := c.conn.RequestWithContext(ctx, SubjectLedSet(ledID), data)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return fmt.Errorf("no portled service is listening on %s", SubjectLedSet(ledID))
		}
		return fmt.Errorf("LED %d set request failed: %w", ledID, err)
	}

	var ack AckMessage
	if err := json.Unmarshal(reply.Data, &ack); err != nil {
		return fmt.Errorf("LED %d: malformed reply: %w", ledID, err)
	}
	if !ack.Accepted {
		return fmt.Errorf("LED %d: request rejected: %s", ledID, ack.Error)
	}

	c.logger.Debug("LED request accepted", "led_id", ledID, "color", m.Color, "blink", m.Blink)
	return nil
}

// Publish sends a set request without waiting for a reply.
func (c *Client) Publish(ledID int, m SetMessage) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return c.conn.Publish(SubjectLedSet(ledID), data)
}

// WatchStates calls fn for every state change the service publishes.
// The returned function stops the watch.
func (c *Client) WatchStates(fn func(StateMessage)) (func(), error) {
	return c.watch(SubjectAllState, func(msg *nats.Msg) error {
		m, err := UnmarshalState(msg.Data)
		if err == nil {
			fn(m)
		}
		return err
	})
}

// WatchErrors calls fn for every rejected or failed LED request.
func (c *Client) WatchErrors(fn func(ErrorMessage)) (func(), error) {
	return c.watch(SubjectAllError, func(msg *nats.Msg) error {
		m, err := UnmarshalError(msg.Data)
		if err == nil {
			fn(m)
		}
		return err
	})
}

func (c *Client) watch(subject string, handle func(*nats.Msg) error) (func(), error) {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handle(msg); err != nil {
			c.logger.Warn("Failed to unmarshal message", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := c.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close drains pending messages and closes the connection.
func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
