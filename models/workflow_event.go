package models

import "time"

const (
	WorkflowEventCreateMilestone    = "create_milestone"
	WorkflowEventScheduleAssessment = "schedule_assessment"
	WorkflowEventIssueCertificate   = "issue_certificate"
	WorkflowEventNotifyUser         = "notify_user"
)

// WorkflowEvent is one outbound obligation fired by a committed transition
// (schedule an assessment, issue a certificate, notify the applicant).
// Rows stay with dispatched_at NULL until the collaborator acknowledges
// delivery, so each event can be retried independently (at-least-once).
type WorkflowEvent struct {
	EventID       int        `gorm:"primaryKey;column:event_id" json:"event_id"`
	ApplicationID int        `gorm:"column:application_id" json:"application_id"`
	EventType     string     `gorm:"column:event_type" json:"event_type"`
	Status        string     `gorm:"column:status" json:"status"`
	Payload       *string    `gorm:"column:payload" json:"payload,omitempty"`
	DispatchedAt  *time.Time `gorm:"column:dispatched_at" json:"dispatched_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for WorkflowEvent.
func (WorkflowEvent) TableName() string {
	return "workflow_events"
}

// IsPending reports whether the event still awaits delivery.
func (e WorkflowEvent) IsPending() bool {
	return e.DispatchedAt == nil
}
