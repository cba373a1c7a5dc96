package store

import (
	"fmt"
	"math"
	"time"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// ThreadUsers tracks per-thread-per-user contract activity: the cooldown
// timestamp and the pointer to the outstanding contract message. All
// operations create the backing row lazily.
type ThreadUsers struct {
	db *gorm.DB
}

// NewThreadUsers creates a ThreadUsers repository.
func NewThreadUsers(db *gorm.DB) *ThreadUsers {
	return &ThreadUsers{db: db}
}

// GetOrCreate returns the ThreadUser row for (threadID, userID), creating
// it if missing.
func (t *ThreadUsers) GetOrCreate(threadID, userID string) (*models.ThreadUser, error) {
	tu := models.ThreadUser{ThreadID: threadID, UserID: userID}
	err := t.db.Where(models.ThreadUser{ThreadID: threadID, UserID: userID}).
		FirstOrCreate(&tu).Error
	if err != nil {
		return nil, fmt.Errorf("store: get or create thread user %s/%s: %w", threadID, userID, err)
	}
	return &tu, nil
}

// CooldownRemaining returns how many whole seconds of cooldown the user has
// left in the thread, rounding partial seconds up. A user who never posted
// has no cooldown. Returns exactly 0 once the full cooldown has elapsed.
func (t *ThreadUsers) CooldownRemaining(threadID, userID string, cooldownSec int, now time.Time) (int, error) {
	tu, err := t.GetOrCreate(threadID, userID)
	if err != nil {
		return 0, err
	}
	if tu.LastContractPosted == nil || cooldownSec <= 0 {
		return 0, nil
	}

	elapsed := now.Sub(*tu.LastContractPosted)
	remaining := time.Duration(cooldownSec)*time.Second - elapsed
	if remaining <= 0 {
		return 0, nil
	}
	return int(math.Ceil(remaining.Seconds())), nil
}

// RecordContractPosted stamps the user's last-contract-posted time in the
// thread, starting a fresh cooldown window.
func (t *ThreadUsers) RecordContractPosted(threadID, userID string, now time.Time) error {
	if _, err := t.GetOrCreate(threadID, userID); err != nil {
		return err
	}
	err := t.db.Model(&models.ThreadUser{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("last_contract_posted", now).Error
	if err != nil {
		return fmt.Errorf("store: record contract posted %s/%s: %w", threadID, userID, err)
	}
	return nil
}

// ActiveContractMessageID returns the message ID of the user's outstanding
// contract in the thread, or "" if none.
func (t *ThreadUsers) ActiveContractMessageID(threadID, userID string) (string, error) {
	tu, err := t.GetOrCreate(threadID, userID)
	if err != nil {
		return "", err
	}
	if tu.ActiveContractMessageID == nil {
		return "", nil
	}
	return *tu.ActiveContractMessageID, nil
}

// SetActiveContractMessageID points the user's outstanding-contract slot in
// the thread at messageID.
func (t *ThreadUsers) SetActiveContractMessageID(threadID, userID, messageID string) error {
	if _, err := t.GetOrCreate(threadID, userID); err != nil {
		return err
	}
	err := t.db.Model(&models.ThreadUser{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("active_contract_message_id", messageID).Error
	if err != nil {
		return fmt.Errorf("store: set active contract %s/%s: %w", threadID, userID, err)
	}
	return nil
}

// ClearActiveContractMessageID clears the user's outstanding-contract slot
// in the thread.
func (t *ThreadUsers) ClearActiveContractMessageID(threadID, userID string) error {
	if _, err := t.GetOrCreate(threadID, userID); err != nil {
		return err
	}
	err := t.db.Model(&models.ThreadUser{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("active_contract_message_id", nil).Error
	if err != nil {
		return fmt.Errorf("store: clear active contract %s/%s: %w", threadID, userID, err)
	}
	return nil
}

// CreatorOfActiveContract finds which user in the thread holds messageID as
// their outstanding contract. Returns "" if no one does, for example after
// the contract was already confirmed.
func (t *ThreadUsers) CreatorOfActiveContract(threadID, messageID string) (string, error) {
	var tu models.ThreadUser
	err := t.db.Where("thread_id = ? AND active_contract_message_id = ?", threadID, messageID).
		First(&tu).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: find contract creator %s/%s: %w", threadID, messageID, err)
	}
	return tu.UserID, nil
}
