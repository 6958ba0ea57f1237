package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"certification-portal-api/models"

	"github.com/google/uuid"
)

// SystemActorID marks transitions driven by external callbacks (payment
// confirmations, scheduler callbacks) rather than a portal user.
const SystemActorID = 0

// WorkflowOrchestrator is the single writer of application state. External
// events (UI actions, payment callbacks, scheduler callbacks) all funnel
// through RequestTransition, which sequences validation, side effects and
// the audit write as one logical unit.
type WorkflowOrchestrator struct {
	store    WorkflowStore
	gate     *PaymentGate
	audit    *AuditTrailWriter
	notifier Notifier
	now      func() time.Time
}

// NewWorkflowOrchestrator wires the orchestrator to its ports. notifier may
// be nil when no user-facing delivery is wanted (tests, batch tools).
func NewWorkflowOrchestrator(store WorkflowStore, notifier Notifier) *WorkflowOrchestrator {
	return &WorkflowOrchestrator{
		store:    store,
		gate:     NewPaymentGate(store),
		audit:    NewAuditTrailWriter(store),
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateApplication opens a new application in DRAFT for the given user and
// writes the creation history entry (nil → DRAFT) atomically with it.
func (o *WorkflowOrchestrator) CreateApplication(userID, maxFreeRevisions int) (models.Application, error) {
	if maxFreeRevisions < 0 {
		maxFreeRevisions = DefaultMaxFreeRevisions
	}
	now := o.now()
	app := models.Application{
		ApplicationNumber: "CERT-" + uuid.NewString(),
		UserID:            userID,
		Status:            string(StatusDraft),
		MaxFreeRevisions:  maxFreeRevisions,
		Version:           1,
		CreateAt:          now,
		UpdateAt:          now,
	}
	first := NewEntry(0, nil, StatusDraft, userID, "", nil, now)
	if err := o.store.CreateApplication(&app, &first); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

// GetApplication loads one application.
func (o *WorkflowOrchestrator) GetApplication(applicationID int) (models.Application, error) {
	return o.store.GetApplication(applicationID)
}

// GetHistory returns the audit trail for an application, oldest first.
func (o *WorkflowOrchestrator) GetHistory(applicationID int) ([]models.ApplicationStatusHistory, error) {
	return o.audit.History(applicationID)
}

// GetMilestones returns all fee obligations of an application.
func (o *WorkflowOrchestrator) GetMilestones(applicationID int) ([]models.PaymentMilestone, error) {
	return o.store.MilestonesByApplication(applicationID)
}

// RequestTransition moves an application toward the requested status. The
// committed status may differ from the request when the validator redirects
// it (over-quota revision). A request for the status the application already
// holds is an idempotent no-op: same result, no second audit entry.
func (o *WorkflowOrchestrator) RequestTransition(applicationID int, requested Status, actorID int, reason string, metadata map[string]string) (models.Application, error) {
	if !IsValidStatus(requested) {
		return models.Application{}, &IllegalTransitionError{To: requested}
	}

	app, err := o.store.GetApplication(applicationID)
	if err != nil {
		return models.Application{}, err
	}

	// One reload-and-revalidate retry after losing the version race.
	for attempt := 0; attempt < 2; attempt++ {
		if Status(app.Status) == requested {
			return app, nil
		}

		decision, err := ValidateTransition(app, requested, reason, o.gate)
		if err != nil {
			return models.Application{}, err
		}
		if !decision.Allowed {
			return models.Application{}, decision.Deny
		}

		committed, err := o.commit(app, decision, actorID, reason, metadata)
		if err == nil {
			o.notify(committed, app.Status, reason)
			return committed, nil
		}
		if !errors.Is(err, ErrConcurrentModification) {
			return models.Application{}, err
		}

		app, err = o.store.GetApplication(applicationID)
		if err != nil {
			return models.Application{}, err
		}
	}

	if Status(app.Status) == requested {
		return app, nil
	}
	return models.Application{}, ErrConcurrentModification
}

// ConfirmPayment settles a milestone reported by the payment gateway and
// requests the follow-up transitions the confirmation unlocks. Duplicate
// confirmations are logged and absorbed; a follow-up that no longer matches
// the application's current status is skipped, leaving the milestone
// confirmed for the next explicit request.
func (o *WorkflowOrchestrator) ConfirmPayment(milestoneRef string, confirmedAt time.Time) (models.Application, error) {
	milestone, followUps, err := o.gate.Confirm(milestoneRef, confirmedAt)
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			log.Printf("duplicate payment confirmation for milestone %s ignored", milestoneRef)
		}
		return models.Application{}, err
	}

	metadata := map[string]string{
		"payment_ref":  milestone.MilestoneRef,
		"payment_kind": milestone.Kind,
	}
	app, err := o.store.GetApplication(milestone.ApplicationID)
	if err != nil {
		return models.Application{}, err
	}

	for _, next := range followUps {
		advanced, err := o.RequestTransition(milestone.ApplicationID, next, SystemActorID, "payment confirmed", metadata)
		if err != nil {
			var illegal *IllegalTransitionError
			var unpaid *PaymentRequiredError
			if errors.As(err, &illegal) || errors.As(err, &unpaid) {
				// Late or early callback: the milestone stays confirmed
				// and the chain stops here.
				log.Printf("skipping auto-advance of application %d to %s after %s payment: %v",
					milestone.ApplicationID, next, milestone.Kind, err)
				return app, nil
			}
			return models.Application{}, err
		}
		app = advanced
	}
	return app, nil
}

// commit applies the decision's side effects to a fresh application value
// and hands the result to the store as one atomic transition.
func (o *WorkflowOrchestrator) commit(app models.Application, decision Decision, actorID int, reason string, metadata map[string]string) (models.Application, error) {
	now := o.now()
	from := Status(app.Status)
	expectedVersion := app.Version

	next := app
	next.Status = string(decision.Target)
	next.Version++
	next.UpdateAt = now

	commitReq := TransitionCommit{
		ExpectedVersion: expectedVersion,
		Entry:           NewEntry(app.ApplicationID, &from, decision.Target, actorID, reason, metadata, now),
	}

	var existing []models.PaymentMilestone
	var existingLoaded bool

	for _, effect := range decision.Effects {
		switch effect.Kind {
		case EffectSetTimestamp:
			setTimestampOnce(&next, effect.Timestamp, now)
		case EffectIncrementRevision:
			next = OnRevisionRequested(next)
		case EffectCreateMilestone:
			if !existingLoaded {
				var err error
				existing, err = o.store.MilestonesByApplication(app.ApplicationID)
				if err != nil {
					return models.Application{}, err
				}
				existingLoaded = true
			}
			// Re-entering a fee-bearing status (resubmission after a
			// revision) must not duplicate an obligation that is still
			// open or already paid.
			if hasOpenOrConfirmedMilestone(existing, effect.Milestone) {
				continue
			}
			milestone := NewMilestone(app.ApplicationID, effect.Milestone, uuid.NewString(), now)
			commitReq.NewMilestones = append(commitReq.NewMilestones, milestone)
			commitReq.Events = append(commitReq.Events, newEvent(app.ApplicationID, models.WorkflowEventCreateMilestone, decision.Target, map[string]string{
				"milestone_ref":  milestone.MilestoneRef,
				"milestone_kind": milestone.Kind,
			}, now))
		case EffectScheduleAssessment:
			commitReq.Events = append(commitReq.Events, newEvent(app.ApplicationID, models.WorkflowEventScheduleAssessment, decision.Target, map[string]string{
				"mode": effect.AssessmentMode,
			}, now))
		case EffectIssueCertificate:
			commitReq.Events = append(commitReq.Events, newEvent(app.ApplicationID, models.WorkflowEventIssueCertificate, decision.Target, map[string]string{
				"application_number": app.ApplicationNumber,
			}, now))
		}
	}
	commitReq.Events = append(commitReq.Events, newEvent(app.ApplicationID, models.WorkflowEventNotifyUser, decision.Target, nil, now))
	commitReq.Application = next

	return o.store.CommitTransition(commitReq)
}

func (o *WorkflowOrchestrator) notify(app models.Application, fromStatus string, reason string) {
	if o.notifier == nil {
		return
	}
	from := Status(fromStatus)
	o.notifier.NotifyTransition(app, &from, Status(app.Status), reason)
}

func setTimestampOnce(app *models.Application, field TimestampField, now time.Time) {
	set := func(target **time.Time) {
		if *target == nil {
			t := now
			*target = &t
		}
	}
	switch field {
	case TimestampSubmitted:
		set(&app.SubmittedAt)
	case TimestampReviewed:
		set(&app.ReviewedAt)
	case TimestampAssessmentScheduled:
		set(&app.AssessmentScheduledAt)
	case TimestampAssessmentCompleted:
		set(&app.AssessmentCompletedAt)
	case TimestampDecided:
		set(&app.DecidedAt)
	}
}

func hasOpenOrConfirmedMilestone(milestones []models.PaymentMilestone, kind MilestoneKind) bool {
	for _, m := range milestones {
		if m.Kind != string(kind) {
			continue
		}
		if m.Status == models.MilestoneStatusPending || m.Status == models.MilestoneStatusConfirmed {
			return true
		}
	}
	return false
}

func newEvent(applicationID int, eventType string, status Status, payload map[string]string, now time.Time) models.WorkflowEvent {
	event := models.WorkflowEvent{
		ApplicationID: applicationID,
		EventType:     eventType,
		Status:        string(status),
		CreatedAt:     now,
	}
	if len(payload) > 0 {
		if raw, err := json.Marshal(payload); err == nil {
			s := string(raw)
			event.Payload = &s
		}
	}
	return event
}
