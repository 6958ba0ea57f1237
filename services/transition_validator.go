package services

import (
	"errors"

	"certification-portal-api/models"
)

// ErrReasonRequired rejects rejection and revision requests that carry no
// explanation for the applicant.
var ErrReasonRequired = errors.New("a reason is required for rejection and revision transitions")

// SideEffectKind enumerates the effects a committed transition applies.
type SideEffectKind string

const (
	EffectSetTimestamp       SideEffectKind = "set_timestamp"
	EffectIncrementRevision  SideEffectKind = "increment_revision"
	EffectCreateMilestone    SideEffectKind = "create_milestone"
	EffectScheduleAssessment SideEffectKind = "schedule_assessment"
	EffectIssueCertificate   SideEffectKind = "issue_certificate"
)

// TimestampField names one of the write-once application timestamps.
type TimestampField string

const (
	TimestampSubmitted           TimestampField = "submitted_at"
	TimestampReviewed            TimestampField = "reviewed_at"
	TimestampAssessmentScheduled TimestampField = "assessment_scheduled_at"
	TimestampAssessmentCompleted TimestampField = "assessment_completed_at"
	TimestampDecided             TimestampField = "decided_at"
)

const (
	AssessmentModeOnline = "online"
	AssessmentModeOnsite = "onsite"
)

// SideEffect describes one concrete effect as data; the orchestrator applies
// them to the application value or converts them into outbound events.
type SideEffect struct {
	Kind           SideEffectKind
	Timestamp      TimestampField
	Milestone      MilestoneKind
	AssessmentMode string
}

// Decision is the validator's verdict on a requested transition.
type Decision struct {
	Allowed bool

	// Target is the status that will actually commit. It differs from the
	// caller's request when an over-quota revision is redirected to
	// REJECTED_PAYMENT_REQUIRED.
	Target  Status
	Effects []SideEffect

	// Deny carries the machine-readable rejection when Allowed is false.
	Deny error
}

func denied(err error) Decision {
	return Decision{Allowed: false, Deny: err}
}

// PaymentChecker is the slice of the payment gate the validator consults.
type PaymentChecker interface {
	HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error)
}

// ValidateTransition decides whether the requested move is legal under the
// status catalog, the revision quota and the payment gates. It is pure with
// respect to its inputs: the outcome depends only on the application value,
// the requested status and the milestone confirmations the checker reports.
func ValidateTransition(app models.Application, requested Status, reason string, gate PaymentChecker) (Decision, error) {
	current := Status(app.Status)

	if !CanTransition(current, requested) {
		return denied(&IllegalTransitionError{From: current, To: requested}), nil
	}

	target := requested
	var effects []SideEffect

	if IsRevisionEdge(current, requested) {
		if reason == "" {
			return denied(ErrReasonRequired), nil
		}
		if !IsFreeRevision(app) {
			// Over quota: absorb into a redirected transition instead of
			// denying outright. The revision fee must be paid before the
			// send-back can proceed.
			return Decision{
				Allowed: true,
				Target:  StatusRejectedPaymentRequired,
				Effects: []SideEffect{
					{Kind: EffectCreateMilestone, Milestone: MilestoneRevision},
				},
			}, nil
		}
	}

	if kind, gated := PaymentRequiredFor(current, target); gated {
		confirmed, err := gate.HasConfirmedMilestone(app.ApplicationID, kind)
		if err != nil {
			return Decision{}, err
		}
		if !confirmed {
			return denied(&PaymentRequiredError{From: current, To: target, Kind: kind}), nil
		}
	}

	if target == StatusRejected && reason == "" {
		return denied(ErrReasonRequired), nil
	}

	effects = append(effects, effectsForEntry(current, target)...)
	return Decision{Allowed: true, Target: target, Effects: effects}, nil
}

// effectsForEntry maps entry into a status to the side effects the
// orchestrator must apply alongside the state change.
func effectsForEntry(from, target Status) []SideEffect {
	switch target {
	case StatusSubmitted:
		return []SideEffect{{Kind: EffectSetTimestamp, Timestamp: TimestampSubmitted}}
	case StatusPaymentPendingReview:
		return []SideEffect{{Kind: EffectCreateMilestone, Milestone: MilestoneDocumentReview}}
	case StatusUnderReview:
		return []SideEffect{{Kind: EffectSetTimestamp, Timestamp: TimestampReviewed}}
	case StatusRevisionRequested:
		return []SideEffect{{Kind: EffectIncrementRevision}}
	case StatusRejectedPaymentRequired:
		// The forward edge out of the fee stop is gated on a confirmed
		// REVISION milestone, so entering it must raise the obligation.
		return []SideEffect{{Kind: EffectCreateMilestone, Milestone: MilestoneRevision}}
	case StatusPaymentPendingAssessment:
		return []SideEffect{{Kind: EffectCreateMilestone, Milestone: MilestoneAssessment}}
	case StatusOnlineAssessmentScheduled:
		return []SideEffect{
			{Kind: EffectSetTimestamp, Timestamp: TimestampAssessmentScheduled},
			{Kind: EffectScheduleAssessment, AssessmentMode: AssessmentModeOnline},
		}
	case StatusOnsiteAssessmentScheduled:
		return []SideEffect{
			{Kind: EffectSetTimestamp, Timestamp: TimestampAssessmentScheduled},
			{Kind: EffectScheduleAssessment, AssessmentMode: AssessmentModeOnsite},
		}
	case StatusOnlineAssessmentCompleted, StatusOnsiteAssessmentCompleted:
		return []SideEffect{
			{Kind: EffectSetTimestamp, Timestamp: TimestampAssessmentCompleted},
			{Kind: EffectCreateMilestone, Milestone: MilestoneCertificateIssuance},
		}
	case StatusCertified:
		effects := []SideEffect{{Kind: EffectSetTimestamp, Timestamp: TimestampDecided}}
		// Re-certification after a suspension does not reissue the document.
		if from != StatusSuspended {
			effects = append(effects, SideEffect{Kind: EffectIssueCertificate})
		}
		return effects
	case StatusRejected:
		return []SideEffect{{Kind: EffectSetTimestamp, Timestamp: TimestampDecided}}
	}
	return nil
}
