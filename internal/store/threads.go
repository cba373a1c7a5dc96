package store

import (
	"fmt"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// MaxCollaborators caps the number of collaborators per thread, owner
// included.
const MaxCollaborators = 20

// Threads is the repository for Thread rows and their collaborator edges.
// The thread owner always holds an implicit collaborator edge, created the
// first time any operation touches the thread.
type Threads struct {
	db *gorm.DB
}

// NewThreads creates a Threads repository.
func NewThreads(db *gorm.DB) *Threads {
	return &Threads{db: db}
}

// GetOrCreate returns the Thread row for threadID, creating it together
// with the owner's collaborator edge if missing.
func (t *Threads) GetOrCreate(threadID, ownerID string) (*models.Thread, error) {
	var thread models.Thread
	err := t.db.Where("thread_id = ?", threadID).First(&thread).Error
	if err == nil {
		return &thread, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("store: read thread %s: %w", threadID, err)
	}

	thread = models.Thread{ThreadID: threadID, OwnerID: ownerID, CollaboratorCount: 1}
	if err := t.db.Create(&thread).Error; err != nil {
		return nil, fmt.Errorf("store: create thread %s: %w", threadID, err)
	}
	ownerEdge := models.Collaborator{ThreadID: threadID, UserID: ownerID}
	if err := t.db.Create(&ownerEdge).Error; err != nil {
		return nil, fmt.Errorf("store: create owner collaborator for %s: %w", threadID, err)
	}
	if err := t.setCollaboratorMirror(threadID, ownerID, true); err != nil {
		return nil, err
	}
	return &thread, nil
}

// IsCollaborator reports whether userID may act on contracts in the thread.
func (t *Threads) IsCollaborator(threadID, ownerID, userID string) (bool, error) {
	if _, err := t.GetOrCreate(threadID, ownerID); err != nil {
		return false, err
	}
	var count int64
	err := t.db.Model(&models.Collaborator{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("store: check collaborator %s/%s: %w", threadID, userID, err)
	}
	return count > 0, nil
}

// Collaborators returns the user IDs collaborating on the thread. The owner
// is listed first; set discardOwner to omit them.
func (t *Threads) Collaborators(threadID, ownerID string, discardOwner bool) ([]string, error) {
	if _, err := t.GetOrCreate(threadID, ownerID); err != nil {
		return nil, err
	}
	var edges []models.Collaborator
	err := t.db.Where("thread_id = ?", threadID).Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("store: list collaborators for %s: %w", threadID, err)
	}

	users := make([]string, 0, len(edges))
	if !discardOwner {
		users = append(users, ownerID)
	}
	for _, e := range edges {
		if e.UserID != ownerID {
			users = append(users, e.UserID)
		}
	}
	return users, nil
}

// CollaboratorCount returns the number of collaborators in the thread,
// owner included.
func (t *Threads) CollaboratorCount(threadID, ownerID string) (int, error) {
	thread, err := t.GetOrCreate(threadID, ownerID)
	if err != nil {
		return 0, err
	}
	return thread.CollaboratorCount, nil
}

// AddCollaborator adds userID as a collaborator to the thread. Returns
// false if the user already collaborates there.
func (t *Threads) AddCollaborator(threadID, ownerID, userID string) (bool, error) {
	thread, err := t.GetOrCreate(threadID, ownerID)
	if err != nil {
		return false, err
	}

	already, err := t.IsCollaborator(threadID, ownerID, userID)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	edge := models.Collaborator{ThreadID: threadID, UserID: userID}
	if err := t.db.Create(&edge).Error; err != nil {
		return false, fmt.Errorf("store: add collaborator %s/%s: %w", threadID, userID, err)
	}
	thread.CollaboratorCount++
	if err := t.db.Save(thread).Error; err != nil {
		return false, fmt.Errorf("store: update collaborator count for %s: %w", threadID, err)
	}
	if err := t.setCollaboratorMirror(threadID, userID, true); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveCollaborator removes userID's collaborator edge. Returns false if
// the user is the owner (who cannot be removed) or not a collaborator.
func (t *Threads) RemoveCollaborator(threadID, ownerID, userID string) (bool, error) {
	thread, err := t.GetOrCreate(threadID, ownerID)
	if err != nil {
		return false, err
	}
	if userID == ownerID {
		return false, nil
	}

	present, err := t.IsCollaborator(threadID, ownerID, userID)
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}

	err = t.db.Where("thread_id = ? AND user_id = ?", threadID, userID).
		Delete(&models.Collaborator{}).Error
	if err != nil {
		return false, fmt.Errorf("store: remove collaborator %s/%s: %w", threadID, userID, err)
	}
	thread.CollaboratorCount--
	if err := t.db.Save(thread).Error; err != nil {
		return false, fmt.Errorf("store: update collaborator count for %s: %w", threadID, err)
	}
	if err := t.setCollaboratorMirror(threadID, userID, false); err != nil {
		return false, err
	}
	return true, nil
}

// setCollaboratorMirror keeps ThreadUser.IsCollaborator in step with the
// collaborator edges.
func (t *Threads) setCollaboratorMirror(threadID, userID string, isCollaborator bool) error {
	tu := models.ThreadUser{ThreadID: threadID, UserID: userID}
	err := t.db.Where(models.ThreadUser{ThreadID: threadID, UserID: userID}).
		FirstOrCreate(&tu).Error
	if err != nil {
		return fmt.Errorf("store: get or create thread user %s/%s: %w", threadID, userID, err)
	}
	if tu.IsCollaborator == isCollaborator {
		return nil
	}
	err = t.db.Model(&models.ThreadUser{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("is_collaborator", isCollaborator).Error
	if err != nil {
		return fmt.Errorf("store: mirror collaborator flag %s/%s: %w", threadID, userID, err)
	}
	return nil
}
