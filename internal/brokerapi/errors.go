package brokerapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies API failures so callers can react to each differently.
type Kind int

const (
	// KindNetwork covers transport failures and timeouts.
	KindNetwork Kind = iota
	// KindUnauthorized means the session token was rejected.
	KindUnauthorized
	// KindServer is a 5xx response.
	KindServer
	// KindClient is any other 4xx response, usually a validation message.
	KindClient
	// KindDecode means the response body did not have the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the tagged failure returned by every Client call.
type Error struct {
	Kind    Kind
	Op      string // "GET /api/property"
	Status  int    // zero for network and decode failures
	Message string // backend message when present
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	case e.Status > 0:
		return fmt.Sprintf("%s returned status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the short text shown in notifications.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindUnauthorized:
		return "Session expired, please log in again"
	case KindNetwork:
		return "Cannot reach the server"
	case KindServer:
		if e.Message != "" {
			return "Server error: " + e.Message
		}
		return "Server error"
	case KindDecode:
		return "Unexpected response from the server"
	default:
		if e.Message != "" {
			return e.Message
		}
		return http.StatusText(e.Status)
	}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// KindOf returns the kind of err, or KindNetwork with ok=false when err is not
// an API error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindNetwork, false
}

// IsUnauthorized reports whether err means the session is no longer valid.
func IsUnauthorized(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindUnauthorized
}

// IsRetryable reports whether retrying the same request may succeed.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindNetwork || kind == KindServer)
}

// Message returns the user-facing text for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
