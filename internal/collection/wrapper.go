package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/flashcards/internal/anki"
	"github.com/mrlokans/flashcards/internal/entities"
	"github.com/mrlokans/flashcards/internal/utils"
)

// ErrMissingCredentials is returned by Sync when neither an email nor a
// password is configured.
var ErrMissingCredentials = errors.New("username and password not provided")

// WrapperConfig configures a Wrapper.
type WrapperConfig struct {
	Dir         string
	Credentials anki.Credentials
	// MaxRetryDelay bounds the random pause between two full sync attempts.
	MaxRetryDelay time.Duration
	// MaxAttempts bounds the full sync attempts; zero retries forever.
	MaxAttempts int
	// Stderr receives server messages. Defaults to os.Stderr.
	Stderr io.Writer
}

// Wrapper combines read access to the local collection with the operations
// delegated to the bridge.
type Wrapper struct {
	*Store

	bridge anki.Bridge
	config WrapperConfig

	// sleep waits between sync attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWrapper creates the collection directory when needed and returns a
// wrapper around the collection it holds.
func NewWrapper(cfg WrapperConfig, bridge anki.Bridge) (*Wrapper, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}
	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for collection: %w", err)
	}
	cfg.Dir = abs
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	return &Wrapper{
		Store:  NewStore(cfg.Dir),
		bridge: bridge,
		config: cfg,
		sleep:  sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sync reconciles the local collection with the remote account. When the
// server requires a full sync, the remote collection is downloaded; the
// download is retried after a random pause while the server answers that
// the client should try again.
func (w *Wrapper) Sync(ctx context.Context) error {
	creds := w.config.Credentials
	if creds.Email == "" && creds.Password == "" {
		return ErrMissingCredentials
	}

	// a full download replaces the database file under the open connection
	if err := w.Store.Close(); err != nil {
		return fmt.Errorf("failed to close collection before sync: %w", err)
	}

	output, err := w.bridge.Sync(ctx, w.Path(), creds, "")
	if err != nil {
		return fmt.Errorf("failed to sync collection: %w", err)
	}

	endpoint := output.NewEndpoint

	if output.ServerMessage != "" {
		fmt.Fprintln(w.config.Stderr, output.ServerMessage)
		return nil
	}

	if output.Required == anki.SyncNoChanges {
		return nil
	}

	req := anki.FullSyncRequest{
		Endpoint:  endpoint,
		ServerUSN: output.ServerMediaUSN,
		Upload:    false,
	}
	for attempt := 1; ; attempt++ {
		err := w.bridge.FullSync(ctx, w.Path(), creds, req)
		if err == nil {
			return nil
		}

		var bridgeErr *anki.BridgeError
		if !errors.As(err, &bridgeErr) || !bridgeErr.IsRetryable() {
			return fmt.Errorf("failed to download collection: %w", err)
		}
		if w.config.MaxAttempts > 0 && attempt >= w.config.MaxAttempts {
			return fmt.Errorf("failed to download collection after %d attempts: %w", attempt, err)
		}

		delay := w.retryDelay()
		log.Printf("Sync: %v", err)
		log.Printf("Sync: too many connections, retrying in %v...", delay)
		if err := w.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (w *Wrapper) retryDelay() time.Duration {
	maxDelay := w.config.MaxRetryDelay
	if maxDelay <= 0 {
		return 0
	}
	// whole seconds in [0, max]
	seconds := int64(maxDelay / time.Second)
	return time.Duration(rand.Int64N(seconds+1)) * time.Second
}

// ExportFile returns the path the deck is exported to in dir: the sanitized
// deck name, or "all" for the whole collection.
func ExportFile(deck *entities.Deck, dir string) string {
	name := "all"
	if deck != nil {
		name = utils.SanitizeFilename(deck.Name)
	}
	return filepath.Join(dir, name+".apkg")
}

// ExportKind selects the package contents.
type ExportKind int

const (
	// ExportShare exports cards and media without review history, for sharing.
	ExportShare ExportKind = iota
	// ExportFullBackup keeps scheduling and deck options so a restore loses nothing.
	ExportFullBackup
)

// Export writes a package for deck (or the whole collection when deck is
// nil) into dir and returns its path.
func (w *Wrapper) Export(ctx context.Context, deck *entities.Deck, dir string, kind ExportKind) (string, error) {
	out, err := filepath.Abs(ExportFile(deck, dir))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute export path: %w", err)
	}

	opts := anki.ExportOptions{
		WithMedia: true,
		Legacy:    true,
	}
	if deck != nil {
		id := deck.ID
		opts.DeckID = &id
	}
	if kind == ExportFullBackup {
		opts.WithScheduling = true
		opts.WithDeckConfigs = true
	}

	path, err := w.bridge.Export(ctx, w.Path(), out, opts)
	if err != nil {
		return "", fmt.Errorf("failed to export %s: %w", deck.DisplayName(), err)
	}
	return path, nil
}

// DueCounts sums the due cards of the top-level decks.
func (w *Wrapper) DueCounts(ctx context.Context) (entities.DueCounts, error) {
	decks, err := w.bridge.DueTree(ctx, w.Path())
	if err != nil {
		return entities.DueCounts{}, fmt.Errorf("failed to get due cards: %w", err)
	}

	var counts entities.DueCounts
	for _, deck := range decks {
		counts.Add(deck.DueCounts)
	}
	return counts, nil
}
