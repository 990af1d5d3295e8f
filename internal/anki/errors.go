package anki

import (
	"fmt"
	"strings"
)

// Error kinds reported by the bridge on stderr.
const (
	KindSync    = "SyncError"
	KindNetwork = "NetworkError"
	KindAuth    = "AuthError"
)

// BridgeError is a failed bridge invocation.
type BridgeError struct {
	Op       string
	Kind     string
	Message  string
	ExitCode int
}

func (e *BridgeError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "error"
	}
	return fmt.Sprintf("anki bridge %s: %s: %s", e.Op, kind, e.Message)
}

// IsRetryable reports whether the remote service asked the client to try
// again later, which happens when several clients sync the same account.
// Only sync errors qualify; a plain-text error has no kind and may be one.
func (e *BridgeError) IsRetryable() bool {
	if e.Kind != KindSync && e.Kind != "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.Message), "try again")
}
