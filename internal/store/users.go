// Package store provides the repository objects backing the contract
// lifecycle: users, threads and collaborators, per-thread activity records,
// and the admin settings registry. Repositories are constructed once at
// startup and injected where needed.
package store

import (
	"fmt"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// Users is the repository for User rows. Rows are created lazily on first
// reference.
type Users struct {
	db *gorm.DB
}

// NewUsers creates a Users repository.
func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// GetOrCreate returns the User row for userID, creating it if missing.
func (u *Users) GetOrCreate(userID string) (*models.User, error) {
	user := models.User{UserID: userID, AllowPings: true}
	err := u.db.Where(models.User{UserID: userID}).
		Attrs(models.User{AllowPings: true}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("store: get or create user %s: %w", userID, err)
	}
	return &user, nil
}

// Points returns the user's feedback points.
func (u *Users) Points(userID string) (int, error) {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return 0, err
	}
	return user.FeedbackPoints, nil
}

// SetPoints sets the user's feedback points.
func (u *Users) SetPoints(userID string, points int) error {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return err
	}
	user.FeedbackPoints = points
	if err := u.db.Save(user).Error; err != nil {
		return fmt.Errorf("store: set points for %s: %w", userID, err)
	}
	return nil
}

// IsBlocked reports whether the user is blocked from creating contracts.
func (u *Users) IsBlocked(userID string) (bool, error) {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	return user.IsBlocked, nil
}

// SetBlocked sets the user's blocked state.
func (u *Users) SetBlocked(userID string, blocked bool) error {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return err
	}
	user.IsBlocked = blocked
	if err := u.db.Save(user).Error; err != nil {
		return fmt.Errorf("store: set blocked for %s: %w", userID, err)
	}
	return nil
}

// AllowPings reports whether the user opted into contract notifications.
func (u *Users) AllowPings(userID string) (bool, error) {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	return user.AllowPings, nil
}

// SetAllowPings sets the user's notification preference.
func (u *Users) SetAllowPings(userID string, allow bool) error {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return err
	}
	user.AllowPings = allow
	if err := u.db.Save(user).Error; err != nil {
		return fmt.Errorf("store: set allow pings for %s: %w", userID, err)
	}
	return nil
}

// RulesAccepted reports whether the user has accepted the contract rules.
func (u *Users) RulesAccepted(userID string) (bool, error) {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	return user.AcceptedRules, nil
}

// SetRulesAccepted records that the user accepted the contract rules.
// One-way: there is no operation to unaccept.
func (u *Users) SetRulesAccepted(userID string) error {
	user, err := u.GetOrCreate(userID)
	if err != nil {
		return err
	}
	user.AcceptedRules = true
	if err := u.db.Save(user).Error; err != nil {
		return fmt.Errorf("store: set rules accepted for %s: %w", userID, err)
	}
	return nil
}

// All returns every known user, ordered by ID for stable iteration.
func (u *Users) All() ([]models.User, error) {
	var users []models.User
	if err := u.db.Order("user_id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	return users, nil
}
