package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// Error is a failed backend call. Either Err is set (transport/decoding failure)
// or StatusCode/Payload describe a non-2xx response.
type Error struct {
	Op         string
	StatusCode int
	// Payload is the raw response body the server sent with the failure.
	Payload   string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Payload != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.ServerMessage())
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage extracts {"error": "..."} or {"message": "..."} from the payload,
// falling back to the raw body.
func (e *Error) ServerMessage() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := sonic.ConfigStd.UnmarshalFromString(e.Payload, &body); err == nil {
		if s := strings.TrimSpace(body.Error); s != "" {
			return s
		}
		if s := strings.TrimSpace(body.Message); s != "" {
			return s
		}
	}
	return e.Payload
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Payload returns the server-provided error body carried by err, if any.
func Payload(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Payload
	}
	return ""
}

// ResponsePayload exposes Payload to callers that only know the error by interface.
func (e *Error) ResponsePayload() string { return e.Payload }
