package services

import (
	"time"

	"certification-portal-api/models"
)

// milestoneFollowUps maps a confirmed milestone kind to the transitions the
// orchestrator must request on the application's behalf. Confirming the
// document-review fee walks the application all the way into review.
var milestoneFollowUps = map[MilestoneKind][]Status{
	MilestoneDocumentReview:      {StatusPaymentConfirmedReview, StatusUnderReview},
	MilestoneAssessment:          {StatusPaymentConfirmedAssessment},
	MilestoneRevision:            {StatusRevisionRequested},
	MilestoneCertificateIssuance: {StatusCertified},
}

// PaymentGate settles milestone confirmations from the payment gateway and
// answers whether a gated transition's fee obligation has been met.
type PaymentGate struct {
	store WorkflowStore
}

// NewPaymentGate builds a gate over the given store.
func NewPaymentGate(store WorkflowStore) *PaymentGate {
	return &PaymentGate{store: store}
}

// HasConfirmedMilestone reports whether the application has at least one
// confirmed milestone of the given kind.
func (g *PaymentGate) HasConfirmedMilestone(applicationID int, kind MilestoneKind) (bool, error) {
	return g.store.HasConfirmedMilestone(applicationID, kind)
}

// Confirm marks the referenced milestone confirmed and returns it together
// with the follow-up transitions the orchestrator should now request. A
// confirmation for an unknown or already-settled milestone returns
// ErrDuplicatePayment and changes nothing.
func (g *PaymentGate) Confirm(milestoneRef string, confirmedAt time.Time) (models.PaymentMilestone, []Status, error) {
	milestone, err := g.store.ConfirmMilestone(milestoneRef, confirmedAt)
	if err != nil {
		return models.PaymentMilestone{}, nil, err
	}
	return milestone, milestoneFollowUps[MilestoneKind(milestone.Kind)], nil
}

// NewMilestone builds a pending milestone row for the given kind using the
// fixed fee schedule.
func NewMilestone(applicationID int, kind MilestoneKind, ref string, now time.Time) models.PaymentMilestone {
	return models.PaymentMilestone{
		MilestoneRef:  ref,
		ApplicationID: applicationID,
		Kind:          string(kind),
		Amount:        MilestoneAmounts[kind],
		Status:        models.MilestoneStatusPending,
		CreateAt:      now,
		UpdateAt:      now,
	}
}
