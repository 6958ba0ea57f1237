package services

import (
	"time"

	"certification-portal-api/models"
)

// TransitionCommit carries everything a committed transition must persist
// atomically: the new application value (CAS-guarded by ExpectedVersion),
// exactly one audit entry, and any milestone or outbound-event rows the
// transition's side effects produced.
type TransitionCommit struct {
	Application     models.Application
	ExpectedVersion int
	Entry           models.ApplicationStatusHistory
	NewMilestones   []models.PaymentMilestone
	Events          []models.WorkflowEvent
}

// WorkflowStore is the persistence port of the workflow engine. The
// orchestrator owns all writes; UI and storage layers never mutate
// applications directly.
type WorkflowStore interface {
	// GetApplication loads one application or ErrApplicationNotFound.
	GetApplication(applicationID int) (models.Application, error)

	// CreateApplication persists a new application together with its
	// creation history entry (nil → DRAFT) as one atomic unit.
	CreateApplication(app *models.Application, first *models.ApplicationStatusHistory) error

	// CommitTransition persists the commit as one transaction. It returns
	// ErrConcurrentModification when the version guard misses, leaving
	// nothing written.
	CommitTransition(commit TransitionCommit) (models.Application, error)

	// History returns the application's audit trail ordered oldest first.
	History(applicationID int) ([]models.ApplicationStatusHistory, error)

	// MilestonesByApplication lists all fee obligations of an application.
	MilestonesByApplication(applicationID int) ([]models.PaymentMilestone, error)

	// HasConfirmedMilestone reports whether at least one milestone of the
	// given kind is confirmed for the application.
	HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error)

	// ConfirmMilestone marks a pending milestone confirmed. Unknown refs
	// and already-settled milestones return ErrDuplicatePayment without
	// touching the row.
	ConfirmMilestone(milestoneRef string, confirmedAt time.Time) (models.PaymentMilestone, error)
}

// Notifier delivers user-facing notifications for committed transitions.
// Delivery is best-effort and at-least-once; failures must never undo the
// transition itself.
type Notifier interface {
	NotifyTransition(app models.Application, from *Status, to Status, reason string)
}
