package store

import (
	"fmt"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// Settings is the registry for admin-set deployment state: the feedback
// channel set, the open-for-feedback tag set, the role requirement table,
// the contract cooldown, and the staff protection flag. It reads and
// writes the singleton Settings row seeded at migration.
type Settings struct {
	db *gorm.DB
}

// NewSettings creates a Settings registry.
func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// row returns the singleton Settings row.
func (s *Settings) row() (*models.Settings, error) {
	var settings models.Settings
	err := s.db.Where("identifier = ?", models.SettingsMainID).First(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("store: read settings: %w", err)
	}
	return &settings, nil
}

// FeedbackChannelIDs returns the registered feedback channel IDs.
func (s *Settings) FeedbackChannelIDs() ([]string, error) {
	var channels []models.FeedbackChannel
	if err := s.db.Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("store: list feedback channels: %w", err)
	}
	ids := make([]string, len(channels))
	for i, c := range channels {
		ids[i] = c.ChannelID
	}
	return ids, nil
}

// IsFeedbackChannel reports whether channelID is a registered feedback
// channel.
func (s *Settings) IsFeedbackChannel(channelID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.FeedbackChannel{}).
		Where("channel_id = ?", channelID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("store: check feedback channel %s: %w", channelID, err)
	}
	return count > 0, nil
}

// AddFeedbackChannel registers a feedback channel. Returns false if it is
// already registered.
func (s *Settings) AddFeedbackChannel(channelID string) (bool, error) {
	present, err := s.IsFeedbackChannel(channelID)
	if err != nil || present {
		return false, err
	}
	ch := models.FeedbackChannel{ChannelID: channelID, SettingsID: models.SettingsMainID}
	if err := s.db.Create(&ch).Error; err != nil {
		return false, fmt.Errorf("store: add feedback channel %s: %w", channelID, err)
	}
	return true, nil
}

// RemoveFeedbackChannel unregisters a feedback channel. Returns false if it
// was not registered.
func (s *Settings) RemoveFeedbackChannel(channelID string) (bool, error) {
	result := s.db.Where("channel_id = ?", channelID).Delete(&models.FeedbackChannel{})
	if result.Error != nil {
		return false, fmt.Errorf("store: remove feedback channel %s: %w", channelID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FeedbackTagIDs returns the registered open-for-feedback tag IDs.
func (s *Settings) FeedbackTagIDs() ([]string, error) {
	var tags []models.FeedbackTag
	if err := s.db.Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("store: list feedback tags: %w", err)
	}
	ids := make([]string, len(tags))
	for i, tag := range tags {
		ids[i] = tag.TagID
	}
	return ids, nil
}

// AddFeedbackTag registers an open-for-feedback tag. Returns false if it is
// already registered.
func (s *Settings) AddFeedbackTag(tagID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.FeedbackTag{}).Where("tag_id = ?", tagID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("store: check feedback tag %s: %w", tagID, err)
	}
	if count > 0 {
		return false, nil
	}
	tag := models.FeedbackTag{TagID: tagID, SettingsID: models.SettingsMainID}
	if err := s.db.Create(&tag).Error; err != nil {
		return false, fmt.Errorf("store: add feedback tag %s: %w", tagID, err)
	}
	return true, nil
}

// RemoveFeedbackTag unregisters an open-for-feedback tag. Returns false if
// it was not registered.
func (s *Settings) RemoveFeedbackTag(tagID string) (bool, error) {
	result := s.db.Where("tag_id = ?", tagID).Delete(&models.FeedbackTag{})
	if result.Error != nil {
		return false, fmt.Errorf("store: remove feedback tag %s: %w", tagID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Roles returns all role requirement rows, lowest requirement first.
func (s *Settings) Roles() ([]models.RoleRequirement, error) {
	var roles []models.RoleRequirement
	if err := s.db.Order("requirement ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("store: list roles: %w", err)
	}
	return roles, nil
}

// getOrCreateRole returns the role row for roleType, creating it if missing.
func (s *Settings) getOrCreateRole(roleType string) (*models.RoleRequirement, error) {
	role := models.RoleRequirement{RoleType: roleType, SettingsID: models.SettingsMainID, Requirement: 1}
	err := s.db.Where(models.RoleRequirement{RoleType: roleType}).
		Attrs(models.RoleRequirement{SettingsID: models.SettingsMainID, Requirement: 1}).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, fmt.Errorf("store: get or create role %s: %w", roleType, err)
	}
	return &role, nil
}

// SetRoleID binds roleType to a guild role.
func (s *Settings) SetRoleID(roleType, roleID string) error {
	role, err := s.getOrCreateRole(roleType)
	if err != nil {
		return err
	}
	role.RoleID = roleID
	if err := s.db.Save(role).Error; err != nil {
		return fmt.Errorf("store: set role id for %s: %w", roleType, err)
	}
	return nil
}

// SetRoleRequirement sets roleType's point threshold.
func (s *Settings) SetRoleRequirement(roleType string, requirement int) error {
	role, err := s.getOrCreateRole(roleType)
	if err != nil {
		return err
	}
	role.Requirement = requirement
	if err := s.db.Save(role).Error; err != nil {
		return fmt.Errorf("store: set requirement for %s: %w", roleType, err)
	}
	return nil
}

// ContractCooldownSec returns the minimum seconds between a user's contracts
// in the same thread.
func (s *Settings) ContractCooldownSec() (int, error) {
	settings, err := s.row()
	if err != nil {
		return 0, err
	}
	return settings.ContractCooldownSec, nil
}

// SetContractCooldownSec sets the contract cooldown.
func (s *Settings) SetContractCooldownSec(sec int) error {
	settings, err := s.row()
	if err != nil {
		return err
	}
	settings.ContractCooldownSec = sec
	if err := s.db.Save(settings).Error; err != nil {
		return fmt.Errorf("store: set contract cooldown: %w", err)
	}
	return nil
}

// StaffIsProtected reports whether staff members are shielded from
// data-modifying moderation commands.
func (s *Settings) StaffIsProtected() (bool, error) {
	settings, err := s.row()
	if err != nil {
		return false, err
	}
	return settings.StaffIsProtected, nil
}

// SetStaffIsProtected sets the staff protection flag.
func (s *Settings) SetStaffIsProtected(protect bool) error {
	settings, err := s.row()
	if err != nil {
		return err
	}
	settings.StaffIsProtected = protect
	if err := s.db.Save(settings).Error; err != nil {
		return fmt.Errorf("store: set staff protection: %w", err)
	}
	return nil
}
