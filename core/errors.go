package core

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// APIError is the normalized failure shape of any API call.
// Status is the HTTP status code of the server's response;
// it is 0 when the request never got an HTTP response (network
// unreachable, malformed body, cancelled context).
type APIError struct {
	Status int             `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func NewAPIError(status int, data []byte) *APIError {
	return &APIError{Status: status, Data: data}
}

// NewTransportError wraps a transport-level failure whose message
// becomes the error payload.
func NewTransportError(err error) *APIError {
	data, _ := json.Marshal(err.Error())
	return &APIError{Data: data}
}

func (e *APIError) Error() string {
	if msg := e.Message(); msg != "" {
		return msg
	}
	if e.Status > 0 {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return "request failed"
}

// Message returns the server's human-readable reason if present:
// either the payload's "message" field, or the payload itself when
// it is a plain string.
func (e *APIError) Message() string {
	if len(e.Data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return ""
}

// AsAPIError unwraps err down to an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := errors.Cause(err).(*APIError)
	return apiErr, ok
}
