package settingsstore

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"gorm.io/gorm"

	"github.com/mrlokans/flashcards/internal/entities"
)

// SettingStore is the key/value storage the stores are built on.
type SettingStore interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// NotifyState remembers the last due-cards message sent to the chat so the
// next notification can replace it.
type NotifyState struct {
	db SettingStore
}

func NewNotifyState(db SettingStore) *NotifyState {
	return &NotifyState{db: db}
}

// LastMessageID returns the ID of the last message sent, if one is stored.
// An unparsable stored value is cleared and reported as absent.
func (s *NotifyState) LastMessageID() (int64, bool, error) {
	setting, err := s.db.GetSetting(entities.SettingKeyTelegramLastMessageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read last message ID: %w", err)
	}
	if setting.Value == "" {
		return 0, false, nil
	}

	id, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		// nothing can be deleted with it; forget it like a failed deletion
		log.Printf("Notify: discarding invalid last message ID %q: %v", setting.Value, err)
		if err := s.ClearLastMessageID(); err != nil {
			return 0, false, fmt.Errorf("failed to clear invalid last message ID: %w", err)
		}
		return 0, false, nil
	}
	return id, true, nil
}

func (s *NotifyState) SetLastMessageID(id int64) error {
	return s.db.SetSetting(entities.SettingKeyTelegramLastMessageID, strconv.FormatInt(id, 10))
}

func (s *NotifyState) ClearLastMessageID() error {
	err := s.db.DeleteSetting(entities.SettingKeyTelegramLastMessageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
