package nats

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SubjectLedsPrefix is the root of every LED subject.
const SubjectLedsPrefix = "portled.leds"

// Wildcard subjects covering every LED.
const (
	SubjectAllSet   = SubjectLedsPrefix + ".*.set"
	SubjectAllState = SubjectLedsPrefix + ".*.state"
	SubjectAllError = SubjectLedsPrefix + ".*.error"
)

// SubjectLedSet returns the subject state requests for one LED arrive on.
func SubjectLedSet(ledID int) string {
	return fmt.Sprintf("%s.%d.set", SubjectLedsPrefix, ledID)
}

// SubjectLedState returns the subject applied state changes are published on.
func SubjectLedState(ledID int) string {
	return fmt.Sprintf("%s.%d.state", SubjectLedsPrefix, ledID)
}

// SubjectLedError returns the subject failed requests are reported on.
func SubjectLedError(ledID int) string {
	return fmt.Sprintf("%s.%d.error", SubjectLedsPrefix, ledID)
}

// LedIDFromSubject extracts the LED index from portled.leds.{id}.{verb}.
func LedIDFromSubject(subject string) (int, error) {
	rest, ok := strings.CutPrefix(subject, SubjectLedsPrefix+".")
	if !ok {
		return 0, fmt.Errorf("subject %q outside %s", subject, SubjectLedsPrefix)
	}
	token, _, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, fmt.Errorf("subject %q has no verb", subject)
	}
	id, err := strconv.Atoi(token)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("subject %q: invalid LED id %q", subject, token)
	}
	return id, nil
}

// SetMessage requests a new LED state (portled.leds.{id}.set).
// LedID is optional; when present it must match the subject.
type SetMessage struct {
	LedID     *int   `json:"led_id,omitempty"`
	Color     string `json:"color"`           // off, blue, yellow
	Blink     string `json:"blink,omitempty"` // off, slow, fast
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Marshal serializes the message to JSON.
func (m SetMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// StateMessage reports an applied state change (portled.leds.{id}.state).
type StateMessage struct {
	LedID         int    `json:"led_id"`
	Color         string `json:"color"`
	Blink         string `json:"blink"`
	PreviousColor string `json:"previous_color"`
	PreviousBlink string `json:"previous_blink"`
	BlinkDegraded bool   `json:"blink_degraded"`
	Timestamp     string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m StateMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// ErrorMessage reports a request that could not be applied (portled.leds.{id}.error).
type ErrorMessage struct {
	LedID     int    `json:"led_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Marshal serializes the message to JSON.
func (m ErrorMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalSet deserializes a SetMessage from JSON.
func UnmarshalSet(data []byte) (SetMessage, error) {
	var m SetMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalState deserializes a StateMessage from JSON.
func UnmarshalState(data []byte) (StateMessage, error) {
	var m StateMessage
	err := json.Unmarshal(data, &m)
	return m, err
}

// UnmarshalError deserializes an ErrorMessage from JSON.
func UnmarshalError(data []byte) (ErrorMessage, error) {
	var m ErrorMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
