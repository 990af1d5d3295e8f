package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/flashcards/internal/entities"
	"github.com/mrlokans/flashcards/internal/telegram"
)

const noDueCardsMessage = "No flashcards to review"

// Messenger posts and removes chat messages.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) (telegram.Message, error)
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// MessageState stores the ID of the last message sent.
type MessageState interface {
	LastMessageID() (int64, bool, error)
	SetLastMessageID(id int64) error
	ClearLastMessageID() error
}

// NotifyJob replaces the previous reminder with the current due counts.
type NotifyJob struct {
	Collection Collection
	Chat       Messenger
	ChatID     string
	State      MessageState
}

func (j *NotifyJob) Name() string { return NameNotify }

func (j *NotifyJob) Run(ctx context.Context, opts Options) error {
	out := opts.out()

	if j.Chat == nil || j.ChatID == "" {
		return telegram.ErrNotConfigured
	}

	if err := j.deletePrevious(ctx); err != nil {
		return err
	}

	if err := syncFirst(ctx, j.Collection, opts); err != nil {
		return err
	}

	counts, err := j.Collection.DueCounts(ctx)
	if err != nil {
		return err
	}

	if !counts.Any() {
		fmt.Fprintln(out, noDueCardsMessage)
		return nil
	}

	message := reminder(counts)
	fmt.Fprintln(out, message)

	sent, err := j.Chat.SendMessage(ctx, j.ChatID, message)
	if err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	if err := j.State.SetLastMessageID(sent.MessageID); err != nil {
		return fmt.Errorf("failed to remember message %d: %w", sent.MessageID, err)
	}
	return nil
}

// deletePrevious removes the last reminder. A message that cannot be deleted
// (already removed, too old) is forgotten anyway.
func (j *NotifyJob) deletePrevious(ctx context.Context) error {
	id, ok, err := j.State.LastMessageID()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := j.Chat.DeleteMessage(ctx, j.ChatID, id); err != nil {
		log.Printf("Notify: failed to delete previous message %d: %v", id, err)
	}
	return j.State.ClearLastMessageID()
}

func reminder(counts entities.DueCounts) string {
	return fmt.Sprintf("Review your flashcards today!\n\nNew cards: %d\nLearning cards: %d\nCards to review: %d",
		counts.New, counts.Learn, counts.Review)
}
