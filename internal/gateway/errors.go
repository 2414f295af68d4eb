package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
//
// Every error returned by the gateway carries exactly one Kind so that callers
// branch on taxonomy, never on raw transport errors.
type Kind int

const (
	// KindNetwork indicates the transport could not complete the call (DNS, connection, timeout).
	KindNetwork Kind = iota
	// KindHTTP indicates a non-2xx response outside the authorization family.
	KindHTTP
	// KindDecode indicates the response body could not be parsed as the expected shape.
	KindDecode
	// KindUnauthorized indicates missing, expired, or invalid credentials on a protected call.
	KindUnauthorized
	// KindValidation indicates a client-side precondition failed before any network call.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the normalized failure shape for all gateway calls.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status code when applicable, 0 otherwise
	Message string // human-readable message, extracted from the backend when present
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, status int, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Status: status, Message: message, cause: cause}
}

// KindOf extracts the failure Kind from err.
// The second return is false when err is not a gateway error.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return 0, false
}

// IsUnauthorized reports whether err represents an authorization failure.
func IsUnauthorized(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnauthorized
}

// IsValidation reports whether err represents a client-side validation failure.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}

// errorBody is the backend's structured error envelope.
// FastAPI-style backends put the message under "detail", which may also be a validation object list.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// extractMessage pulls a human-readable message out of an error response body,
// falling back to a generic message carrying the status code.
func extractMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("request failed with status %d %s", status, http.StatusText(status))
	if len(body) == 0 {
		return fallback
	}

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil && message != "" {
		return message
	}

	// Validation errors arrive as a list of {loc, msg, type} objects.
	var details []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &details); err == nil && len(details) > 0 && details[0].Msg != "" {
		return details[0].Msg
	}

	return fallback
}

// statusError builds the normalized error for a non-2xx response.
func statusError(status int, body []byte) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindUnauthorized
	}
	return newError(kind, status, extractMessage(body, status), nil)
}
