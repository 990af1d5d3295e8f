// Package anki talks to the external flashcard-management library through a
// bridge command. The bridge owns the sync protocol, the package format and
// the scheduler; this package only sequences calls and decodes results.
package anki

import (
	"context"

	"github.com/mrlokans/flashcards/internal/entities"
)

// SyncRequired tells what the server expects after a normal sync.
type SyncRequired string

const (
	SyncNoChanges    SyncRequired = "no_changes"
	SyncNormal       SyncRequired = "normal_sync"
	SyncFull         SyncRequired = "full_sync"
	SyncFullDownload SyncRequired = "full_download"
	SyncFullUpload   SyncRequired = "full_upload"
)

// SyncOutput is the result of a normal sync.
type SyncOutput struct {
	Required       SyncRequired `json:"required"`
	ServerMessage  string       `json:"server_message"`
	NewEndpoint    string       `json:"new_endpoint"`
	ServerMediaUSN *int64       `json:"server_media_usn"`
}

// FullSyncRequest describes a one-way full sync.
type FullSyncRequest struct {
	Endpoint  string
	ServerUSN *int64
	Upload    bool
}

// ExportOptions selects what goes into a package file.
type ExportOptions struct {
	DeckID          *int64
	WithScheduling  bool
	WithDeckConfigs bool
	WithMedia       bool
	Legacy          bool
}

// DueDeck holds the due counts of one top-level deck of the due tree.
type DueDeck struct {
	Name string `json:"name"`
	entities.DueCounts
}

// Credentials authenticate against the remote account.
type Credentials struct {
	Email    string
	Password string
}

// Bridge is the set of operations delegated to the flashcard library.
type Bridge interface {
	Sync(ctx context.Context, collection string, creds Credentials, endpoint string) (*SyncOutput, error)
	FullSync(ctx context.Context, collection string, creds Credentials, req FullSyncRequest) error
	Export(ctx context.Context, collection, out string, opts ExportOptions) (string, error)
	DueTree(ctx context.Context, collection string) ([]DueDeck, error)
}
