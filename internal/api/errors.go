package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

var (
	// ErrUnauthorized is returned after the API answered 401 and the session was torn down.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoToken is returned before any request when an authenticated call has no token.
	ErrNoToken = errors.New("no token available")
	// ErrNetwork wraps transport level failures (dns, refused, timeout).
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx answer from the API other than 401.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Validation reports whether the error is a client error carrying a server message.
func (e *APIError) Validation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Transient reports whether retrying the same request may succeed.
func Transient(err error) bool {
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Message returns the server supplied message of err, or fallback when there is none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseErrorBody pulls a human message out of the usual error payload shapes:
// {"error": "..."}, {"detail": "..."}, {"field": ["..."]} or {"non_field_errors": ["..."]}.
func parseErrorBody(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message", "non_field_errors"} {
		if raw, ok := payload[key]; ok {
			if msg := firstMessage(raw); msg != "" {
				return msg
			}
		}
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msg := firstMessage(payload[k]); msg != "" {
			return k + ": " + msg
		}
	}
	return ""
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
