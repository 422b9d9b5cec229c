package events

// Event type constants for kelindar/event.
const (
	TypeLedStateRequested uint32 = iota + 1
	TypeLedStateChanged
	TypeLedError
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LedStateRequestedEvent asks the LED manager to apply a state.
// Published by the NATS bridge and the HTTP API on behalf of the
// status-decision service.
type LedStateRequestedEvent struct {
	LedID     int    `json:"led_id" example:"0" doc:"LED index"`
	Color     string `json:"color" example:"yellow" enum:"off,blue,yellow" doc:"Requested color"`
	Blink     string `json:"blink" example:"slow" enum:"off,slow,fast" doc:"Requested blink rate"`
	Reason    string `json:"reason,omitempty" example:"lldp_mismatch" doc:"Why the state was requested"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Request timestamp"`
}

// Type returns the event type identifier for LedStateRequestedEvent.
func (e LedStateRequestedEvent) Type() uint32 { return TypeLedStateRequested }

// LED returns the index of the LED the event concerns.
func (e LedStateRequestedEvent) LED() int { return e.LedID }

// LedStateChangedEvent is published after a new state was applied to hardware.
type LedStateChangedEvent struct {
	LedID         int    `json:"led_id" example:"0" doc:"LED index"`
	Color         string `json:"color" example:"yellow" doc:"Applied color"`
	Blink         string `json:"blink" example:"slow" doc:"Applied blink rate"`
	PreviousColor string `json:"previous_color" example:"blue" doc:"Color before the change"`
	PreviousBlink string `json:"previous_blink" example:"off" doc:"Blink rate before the change"`
	BlinkDegraded bool   `json:"blink_degraded" doc:"Blink attributes could not be written; LED is solid"`
	Timestamp     string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LedStateChangedEvent.
func (e LedStateChangedEvent) Type() uint32 { return TypeLedStateChanged }

// LED returns the index of the LED the event concerns.
func (e LedStateChangedEvent) LED() int { return e.LedID }

// LedErrorEvent reports a failed state application.
type LedErrorEvent struct {
	LedID     int    `json:"led_id" example:"0" doc:"LED index"`
	Code      string `json:"code" example:"WRITE_FAILED" doc:"Error code"`
	Message   string `json:"message" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LedErrorEvent.
func (e LedErrorEvent) Type() uint32 { return TypeLedError }

// LED returns the index of the LED the event concerns.
func (e LedErrorEvent) LED() int { return e.LedID }
