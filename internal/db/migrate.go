package db

import (
	"fmt"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Thread{},
		&models.Collaborator{},
		&models.ThreadUser{},
		&models.Settings{},
		&models.FeedbackChannel{},
		&models.FeedbackTag{},
		&models.RoleRequirement{},
		&models.SyncReport{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedSettings ensures the singleton Settings row exists. Existing values
// are left untouched so admin-set state survives re-migration.
func SeedSettings(db *gorm.DB) error {
	var settings models.Settings
	err := db.Where("identifier = ?", models.SettingsMainID).First(&settings).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("db: read settings: %w", err)
	}

	settings = models.Settings{
		Identifier:       models.SettingsMainID,
		StaffIsProtected: true,
	}
	if err := db.Create(&settings).Error; err != nil {
		return fmt.Errorf("db: seed settings: %w", err)
	}
	return nil
}
