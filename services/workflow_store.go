package services

import (
	"errors"
	"time"

	"certification-portal-api/models"

	"gorm.io/gorm"
)

// GormWorkflowStore is the MySQL-backed WorkflowStore. The version column on
// applications carries the optimistic-concurrency guard; every write path
// runs inside one transaction so state, audit entry, milestones and events
// land together or not at all.
type GormWorkflowStore struct {
	db *gorm.DB
}

// NewGormWorkflowStore builds a store over the given DB handle.
func NewGormWorkflowStore(db *gorm.DB) *GormWorkflowStore {
	return &GormWorkflowStore{db: db}
}

func (s *GormWorkflowStore) GetApplication(applicationID int) (models.Application, error) {
	var app models.Application
	err := s.db.Where("application_id = ?", applicationID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, &StorageError{Op: "load application", Err: err}
	}
	return app, nil
}

func (s *GormWorkflowStore) CreateApplication(app *models.Application, first *models.ApplicationStatusHistory) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		first.ApplicationID = app.ApplicationID
		return tx.Create(first).Error
	})
	if err != nil {
		return &StorageError{Op: "create application", Err: err}
	}
	return nil
}

func (s *GormWorkflowStore) CommitTransition(commit TransitionCommit) (models.Application, error) {
	app := commit.Application
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":                 app.Status,
			"revision_count_current": app.RevisionCountCurrent,
			"version":                app.Version,
			"update_at":              app.UpdateAt,
		}
		addTimestamp(updates, "submitted_at", app.SubmittedAt)
		addTimestamp(updates, "reviewed_at", app.ReviewedAt)
		addTimestamp(updates, "assessment_scheduled_at", app.AssessmentScheduledAt)
		addTimestamp(updates, "assessment_completed_at", app.AssessmentCompletedAt)
		addTimestamp(updates, "decided_at", app.DecidedAt)

		result := tx.Model(&models.Application{}).
			Where("application_id = ? AND version = ?", app.ApplicationID, commit.ExpectedVersion).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		entry := commit.Entry
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		for i := range commit.NewMilestones {
			if err := tx.Create(&commit.NewMilestones[i]).Error; err != nil {
				return err
			}
		}
		for i := range commit.Events {
			if err := tx.Create(&commit.Events[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConcurrentModification) {
			return models.Application{}, ErrConcurrentModification
		}
		return models.Application{}, &StorageError{Op: "commit transition", Err: err}
	}
	return app, nil
}

func (s *GormWorkflowStore) History(applicationID int) ([]models.ApplicationStatusHistory, error) {
	var entries []models.ApplicationStatusHistory
	err := s.db.Where("application_id = ?", applicationID).
		Order("changed_at ASC, history_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, &StorageError{Op: "load history", Err: err}
	}
	return entries, nil
}

func (s *GormWorkflowStore) MilestonesByApplication(applicationID int) ([]models.PaymentMilestone, error) {
	var milestones []models.PaymentMilestone
	err := s.db.Where("application_id = ?", applicationID).
		Order("milestone_id ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, &StorageError{Op: "load milestones", Err: err}
	}
	return milestones, nil
}

func (s *GormWorkflowStore) HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error) {
	var count int64
	err := s.db.Model(&models.PaymentMilestone{}).
		Where("application_id = ? AND kind = ? AND status = ?",
			applicationID, string(kind), models.MilestoneStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, &StorageError{Op: "check milestone", Err: err}
	}
	return count > 0, nil
}

func (s *GormWorkflowStore) ConfirmMilestone(milestoneRef string, confirmedAt time.Time) (models.PaymentMilestone, error) {
	var milestone models.PaymentMilestone
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Guarding on status = pending makes gateway retries no-ops.
		result := tx.Model(&models.PaymentMilestone{}).
			Where("milestone_ref = ? AND status = ?", milestoneRef, models.MilestoneStatusPending).
			Updates(map[string]interface{}{
				"status":    models.MilestoneStatusConfirmed,
				"paid_at":   confirmedAt,
				"update_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicatePayment
		}
		return tx.Where("milestone_ref = ?", milestoneRef).First(&milestone).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			return models.PaymentMilestone{}, ErrDuplicatePayment
		}
		return models.PaymentMilestone{}, &StorageError{Op: "confirm milestone", Err: err}
	}
	return milestone, nil
}

func addTimestamp(updates map[string]interface{}, column string, value *time.Time) {
	if value != nil {
		updates[column] = *value
	}
}
