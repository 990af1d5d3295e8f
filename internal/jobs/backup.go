package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/mailer"
	"github.com/mrlokans/flashcards/internal/progress"
)

const (
	backupSubjectLayout  = "02/01/2006 15:04:05"
	backupFilenameLayout = "2006-01-02_15-04-05"

	backupBody = `The flashcards backup for %s is attached.

When importing the file, remember to check:
- Import any learning progress
- Import any deck presets
`
)

// MailSender delivers an email.
type MailSender interface {
	Send(ctx context.Context, message mailer.Message) error
}

// BackupJob emails a full export of the collection.
type BackupJob struct {
	Collection Collection
	Mailer     MailSender
	From       string
	To         string
	Location   *time.Location
	Now        func() time.Time
}

func (j *BackupJob) Name() string { return NameBackup }

func (j *BackupJob) Run(ctx context.Context, opts Options) error {
	out := opts.out()

	if err := syncFirst(ctx, j.Collection, opts); err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "flashcards-backup-")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	var exported string
	err = progress.Step(out, "Exporting all the collection", func() error {
		var err error
		exported, err = j.Collection.Export(ctx, nil, tmp, collection.ExportFullBackup)
		return err
	})
	if err != nil {
		return err
	}

	now := clock(j.Now)
	if j.Location != nil {
		now = now.In(j.Location)
	}
	date := now.Format(backupSubjectLayout)

	attachment := filepath.Join(filepath.Dir(exported), "export_"+now.Format(backupFilenameLayout)+".apkg")
	if err := os.Rename(exported, attachment); err != nil {
		return fmt.Errorf("failed to rename backup: %w", err)
	}

	return progress.Step(out, "Sending email", func() error {
		return j.Mailer.Send(ctx, mailer.Message{
			From:       j.From,
			To:         j.To,
			Subject:    "Flashcards backup " + date,
			Body:       fmt.Sprintf(backupBody, date),
			Attachment: attachment,
		})
	})
}
