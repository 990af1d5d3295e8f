package telegram

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates no bot token or chat ID is set.
var ErrNotConfigured = errors.New("telegram bot token or chat ID not configured")

// APIError is an error answered by the Bot API (`"ok": false`).
type APIError struct {
	Method      string
	Code        int
	Description string
	// RetryAfter is the flood-control wait in seconds, when the API sets one.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s failed: %d %s", e.Method, e.Code, e.Description)
}

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.Code == 429 || e.Code >= 500
}

// RateLimited reports whether the request was refused by flood control and
// never processed.
func (e *APIError) RateLimited() bool {
	return e.Code == 429
}
