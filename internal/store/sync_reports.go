package store

import (
	"fmt"

	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

// SyncReports is the repository for role reconciliation audit rows.
type SyncReports struct {
	db *gorm.DB
}

// NewSyncReports creates a SyncReports repository.
func NewSyncReports(db *gorm.DB) *SyncReports {
	return &SyncReports{db: db}
}

// Record persists one audit row.
func (r *SyncReports) Record(report *models.SyncReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("store: record sync report: %w", err)
	}
	return nil
}

// Recent returns the newest limit audit rows.
func (r *SyncReports) Recent(limit int) ([]models.SyncReport, error) {
	var reports []models.SyncReport
	if err := r.db.Order("id DESC").Limit(limit).Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("store: list sync reports: %w", err)
	}
	return reports, nil
}

// ForRun returns the audit rows of one bulk resync run, oldest first.
func (r *SyncReports) ForRun(runID string) ([]models.SyncReport, error) {
	var reports []models.SyncReport
	if err := r.db.Where("run_id = ?", runID).Order("id ASC").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("store: list sync reports for run %s: %w", runID, err)
	}
	return reports, nil
}
