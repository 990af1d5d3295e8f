package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/flashcards/internal/anki"
	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/config"
	"github.com/mrlokans/flashcards/internal/database"
	"github.com/mrlokans/flashcards/internal/jobs"
	"github.com/mrlokans/flashcards/internal/mailer"
	"github.com/mrlokans/flashcards/internal/settingsstore"
	"github.com/mrlokans/flashcards/internal/site"
	"github.com/mrlokans/flashcards/internal/telegram"
)

// Services bundles the state database, the collection and the jobs built
// on them. The daemon and the one-shot commands share it.
type Services struct {
	DB         *database.Database
	Collection *collection.Wrapper
	Runner     *jobs.Runner
	Location   *time.Location
}

// NewServices opens the state database and wires every job from cfg.
func NewServices(cfg *config.Config) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	dbPath, err := filepath.Abs(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bridge := anki.NewProcessBridge(cfg.Bridge)
	wrapper, err := collection.NewWrapper(collection.WrapperConfig{
		Dir: cfg.Collection.Dir,
		Credentials: anki.Credentials{
			Email:    cfg.Email,
			Password: cfg.Collection.Password,
		},
		MaxRetryDelay: cfg.MaxRetryDelay,
		MaxAttempts:   cfg.MaxAttempts,
	}, bridge)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := NewRegistry(cfg, wrapper, settingsstore.NewNotifyState(db), loc)

	return &Services{
		DB:         db,
		Collection: wrapper,
		Runner:     jobs.NewRunner(registry, db),
		Location:   loc,
	}, nil
}

// NewRegistry creates the four jobs on top of col.
func NewRegistry(cfg *config.Config, col jobs.Collection, state jobs.MessageState, loc *time.Location) *jobs.Registry {
	generator := site.NewGenerator(site.Layout{DocsDir: cfg.DocsDir}, cfg.ViewerURL, cfg.BaseURL, loc)
	builder := &site.Builder{
		ConfigPath: cfg.MkdocsConfig,
		Command:    cfg.MkdocsCommand,
		GitLabCI:   cfg.GitLabCI,
		Location:   loc,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	sender := mailer.NewSender(mailer.Config{
		Server:   cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Email,
		Password: cfg.Mail.Password,
	})

	notify := &jobs.NotifyJob{
		Collection: col,
		ChatID:     cfg.ChatID,
		State:      state,
	}
	if cfg.Token != "" {
		notify.Chat = telegram.NewClient(cfg.Telegram.APIURL, cfg.Token)
	}

	return jobs.NewRegistry(
		&jobs.SyncJob{Collection: col},
		&jobs.PublishJob{
			Collection: col,
			Generator:  generator,
			Builder:    builder,
			Workers:    cfg.ExportWorkers,
		},
		&jobs.BackupJob{
			Collection: col,
			Mailer:     sender,
			From:       cfg.Email,
			To:         cfg.Recipient,
			Location:   loc,
		},
		notify,
	)
}

// Close releases the collection and the state database.
func (s *Services) Close() error {
	colErr := s.Collection.Close()
	if err := s.DB.Close(); err != nil {
		return err
	}
	return colErr
}
