package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/utils"
)

// Error is the single failure type returned by the gateway. Status is zero when the
// backend was never reached (DNS, refused connection, timeout, cancelled context).
type Error struct {
	Status  int
	Message string
	Detail  any
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	return err.Error()
}

func protocolError(status int, body any) *Error {
	return &Error{
		Status:  status,
		Message: extractMessage(body, status),
		Detail:  body,
	}
}

func unreachable(err error) *Error {
	return &Error{Message: fmt.Sprintf("backend unreachable: %v", err), Cause: err}
}

// extractMessage picks, in order: error.message, detail, the serialized error value, the
// status phrase.
func extractMessage(body any, status int) string {
	if m, ok := body.(map[string]any); ok {
		if nested, ok := m["error"].(map[string]any); ok {
			if msg, ok := nested["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if detail, ok := m["detail"]; ok && detail != nil {
			if s := stringify(detail); s != "" {
				return s
			}
		}
		if e, ok := m["error"]; ok && e != nil {
			if s := stringify(e); s != "" {
				return s
			}
		}
	}
	if phrase := utils.StatusMessage(status); phrase != "" {
		return phrase
	}
	return fmt.Sprintf("HTTP %d", status)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
