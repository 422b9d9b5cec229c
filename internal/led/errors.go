package led

import (
	"errors"
	"fmt"
)

// Error represents an LED controller failure tied to one LED and, when the
// failure came from the filesystem, the file involved.
type Error struct {
	Code    string
	LedID   int
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: led %d: %s", e.Code, e.LedID, e.Message)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeConfig       = "CONFIG_ERROR"
	ErrCodeWrite        = "WRITE_FAILED"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeNotFound     = "LED_NOT_FOUND"
)

func newError(code string, ledID int, path, message string, cause error) *Error {
	return &Error{
		Code:    code,
		LedID:   ledID,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	var ledErr *Error
	if !errors.As(err, &ledErr) {
		return false
	}
	return ledErr.Code == code
}
