package models

import "time"

// Application represents one certification request moving through the
// workflow. Rows are never deleted; terminal applications are kept for audit.
type Application struct {
	ApplicationID        int    `gorm:"primaryKey;column:application_id" json:"application_id"`
	ApplicationNumber    string `gorm:"column:application_number;unique" json:"application_number"`
	UserID               int    `gorm:"column:user_id" json:"user_id"`
	Status               string `gorm:"column:status" json:"status"`
	RevisionCountCurrent int    `gorm:"column:revision_count_current" json:"revision_count_current"`
	MaxFreeRevisions     int    `gorm:"column:max_free_revisions" json:"max_free_revisions"`

	// Version is the optimistic-concurrency counter; every committed
	// transition increments it by one.
	Version int `gorm:"column:version" json:"version"`

	// Milestone timestamps, each set on first entry into the matching
	// status and never overwritten afterwards.
	SubmittedAt           *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt            *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	AssessmentScheduledAt *time.Time `gorm:"column:assessment_scheduled_at" json:"assessment_scheduled_at,omitempty"`
	AssessmentCompletedAt *time.Time `gorm:"column:assessment_completed_at" json:"assessment_completed_at,omitempty"`
	DecidedAt             *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`

	CreateAt time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Applicant  User               `gorm:"foreignKey:UserID" json:"applicant,omitempty"`
	Milestones []PaymentMilestone `gorm:"foreignKey:ApplicationID" json:"milestones,omitempty"`
}

// TableName specifies the table for Application.
func (Application) TableName() string {
	return "applications"
}
