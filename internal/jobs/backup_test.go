package jobs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/flashcards/internal/collection"
	"github.com/mrlokans/flashcards/internal/mailer"
)

type fakeMailer struct {
	sent       []mailer.Message
	attachment string
	err        error
}

func (m *fakeMailer) Send(ctx context.Context, message mailer.Message) error {
	m.sent = append(m.sent, message)
	data, err := os.ReadFile(message.Attachment)
	if err != nil {
		return err
	}
	m.attachment = string(data)
	return m.err
}

func newBackupJob(col *fakeCollection, mail *fakeMailer) *BackupJob {
	return &BackupJob{
		Collection: col,
		Mailer:     mail,
		From:       "me@example.org",
		To:         "backup@example.org",
		Location:   time.FixedZone("CET", 3600),
		Now:        func() time.Time { return time.Date(2024, 3, 5, 21, 30, 0, 0, time.UTC) },
	}
}

func TestBackupJob(t *testing.T) {
	col := sampleCollection()
	mail := &fakeMailer{}

	var out bytes.Buffer
	require.NoError(t, newBackupJob(col, mail).Run(context.Background(), Options{Out: &out}))

	assert.Equal(t, 1, col.synced)
	require.Len(t, col.exports, 1)
	assert.Nil(t, col.exports[0].Deck)
	assert.Equal(t, collection.ExportFullBackup, col.exports[0].Kind)

	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, "me@example.org", msg.From)
	assert.Equal(t, "backup@example.org", msg.To)
	assert.Equal(t, "Flashcards backup 05/03/2024 22:30:00", msg.Subject)
	assert.Equal(t, "The flashcards backup for 05/03/2024 22:30:00 is attached.\n\n"+
		"When importing the file, remember to check:\n"+
		"- Import any learning progress\n"+
		"- Import any deck presets\n", msg.Body)
	assert.Equal(t, "export_2024-03-05_22-30-00.apkg", filepath.Base(msg.Attachment))
	assert.Equal(t, "all the collection", mail.attachment)

	assert.NoDirExists(t, filepath.Dir(msg.Attachment))
	assert.Contains(t, out.String(), "Exporting all the collection... OK\n")
	assert.Contains(t, out.String(), "Sending email... OK\n")
}

func TestBackupJobRemovesTempDirOnFailure(t *testing.T) {
	col := sampleCollection()
	mail := &fakeMailer{err: mailer.ErrNotConfigured}

	var out bytes.Buffer
	err := newBackupJob(col, mail).Run(context.Background(), Options{NoSync: true, Out: &out})

	assert.ErrorIs(t, err, mailer.ErrNotConfigured)
	assert.Zero(t, col.synced)
	require.Len(t, mail.sent, 1)
	assert.NoDirExists(t, filepath.Dir(mail.sent[0].Attachment))
	assert.Contains(t, out.String(), "Sending email... ERROR: ")
}

func TestBackupJobExportFailure(t *testing.T) {
	col := sampleCollection()
	col.exportErr = errors.New("disk full")
	mail := &fakeMailer{}

	err := newBackupJob(col, mail).Run(context.Background(), Options{NoSync: true, Out: &bytes.Buffer{}})

	assert.ErrorIs(t, err, col.exportErr)
	assert.Empty(t, mail.sent)
}
