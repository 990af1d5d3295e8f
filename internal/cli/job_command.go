package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/flashcards/internal/config"
	"github.com/mrlokans/flashcards/internal/jobs"
)

// JobCommand runs one maintenance job in the foreground.
type JobCommand struct {
	Job    string
	NoSync bool

	command     string
	description string
	syncFlag    bool
	cfg         *config.Config
}

// NewSyncCommand creates the "sync" command.
func NewSyncCommand(cfg *config.Config) *JobCommand {
	return &JobCommand{
		Job:         jobs.NameSync,
		command:     "sync",
		description: "Synchronize the local collection with the remote account.",
		cfg:         cfg,
	}
}

// NewExportDocsCommand creates the "export-docs" command.
func NewExportDocsCommand(cfg *config.Config) *JobCommand {
	return &JobCommand{
		Job:         jobs.NamePublish,
		command:     "export-docs",
		description: "Export every deck and rebuild the download site.",
		syncFlag:    true,
		cfg:         cfg,
	}
}

// NewBackupCommand creates the "backup" command.
func NewBackupCommand(cfg *config.Config) *JobCommand {
	return &JobCommand{
		Job:         jobs.NameBackup,
		command:     "backup",
		description: "Email a full export of the collection.",
		syncFlag:    true,
		cfg:         cfg,
	}
}

// NewNotifyCommand creates the "notify" command.
func NewNotifyCommand(cfg *config.Config) *JobCommand {
	return &JobCommand{
		Job:         jobs.NameNotify,
		command:     "notify",
		description: "Post the number of cards due today to the chat.",
		syncFlag:    true,
		cfg:         cfg,
	}
}

// ParseFlags parses command line flags
func (cmd *JobCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.command, flag.ContinueOnError)
	if cmd.syncFlag {
		fs.BoolVar(&cmd.NoSync, "no-sync", false, "Don't sync the collection before running")
	}

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], cmd.command)
		fmt.Fprintf(os.Stderr, "%s\n\n", cmd.description)
		if cmd.syncFlag {
			fmt.Fprintf(os.Stderr, "Options:\n")
			fs.PrintDefaults()
		}
	}

	return fs.Parse(args)
}

// Run executes the job and records the run in the state database.
func (cmd *JobCommand) Run(ctx context.Context) error {
	services, err := NewServices(cmd.cfg)
	if err != nil {
		return err
	}
	defer services.Close()

	_, err = services.Runner.Run(ctx, cmd.Job, jobs.Options{
		NoSync:  cmd.NoSync,
		Out:     os.Stdout,
		Trigger: jobs.TriggerCLI,
	})
	return err
}
