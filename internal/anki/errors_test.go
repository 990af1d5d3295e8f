package anki

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeError_IsRetryable(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		message string
		want    bool
	}{
		{"sync error asking to try again", KindSync, "Too many connections, please try again later", true},
		{"plain text asking to try again", "", "Please TRY AGAIN", true},
		{"sync error without the phrase", KindSync, "collection is corrupt", false},
		{"network error asking to try again", KindNetwork, "connection reset, try again", false},
		{"auth error asking to try again", KindAuth, "invalid key, try again", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &BridgeError{Op: "full-sync", Kind: tt.kind, Message: tt.message}
			assert.Equal(t, tt.want, err.IsRetryable())
		})
	}
}
