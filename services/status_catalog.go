package services

import "sort"

// Status is one value of the closed certification lifecycle enumeration.
// The string values are the wire contract shared with the UI, the payment
// gateway callback and the scheduling service.
type Status string

const (
	StatusDraft                      Status = "DRAFT"
	StatusSubmitted                  Status = "SUBMITTED"
	StatusPaymentPendingReview       Status = "PAYMENT_PENDING_REVIEW"
	StatusPaymentConfirmedReview     Status = "PAYMENT_CONFIRMED_REVIEW"
	StatusUnderReview                Status = "UNDER_REVIEW"
	StatusRevisionRequested          Status = "REVISION_REQUESTED"
	StatusRejectedPaymentRequired    Status = "REJECTED_PAYMENT_REQUIRED"
	StatusReviewApproved             Status = "REVIEW_APPROVED"
	StatusPaymentPendingAssessment   Status = "PAYMENT_PENDING_ASSESSMENT"
	StatusPaymentConfirmedAssessment Status = "PAYMENT_CONFIRMED_ASSESSMENT"
	StatusOnlineAssessmentScheduled  Status = "ONLINE_ASSESSMENT_SCHEDULED"
	StatusOnsiteAssessmentScheduled  Status = "ONSITE_ASSESSMENT_SCHEDULED"
	StatusOnlineAssessmentInProgress Status = "ONLINE_ASSESSMENT_IN_PROGRESS"
	StatusOnsiteAssessmentInProgress Status = "ONSITE_ASSESSMENT_IN_PROGRESS"
	StatusOnlineAssessmentCompleted  Status = "ONLINE_ASSESSMENT_COMPLETED"
	StatusOnsiteAssessmentCompleted  Status = "ONSITE_ASSESSMENT_COMPLETED"
	StatusCertified                  Status = "CERTIFIED"
	StatusRejected                   Status = "REJECTED"
	StatusCancelled                  Status = "CANCELLED"
	StatusExpired                    Status = "EXPIRED"
	StatusSuspended                  Status = "SUSPENDED"
	StatusRevoked                    Status = "REVOKED"
)

// MilestoneKind names one of the fixed fee obligations.
type MilestoneKind string

const (
	MilestoneDocumentReview      MilestoneKind = "DOCUMENT_REVIEW"
	MilestoneAssessment          MilestoneKind = "ASSESSMENT"
	MilestoneCertificateIssuance MilestoneKind = "CERTIFICATE_ISSUANCE"
	MilestoneRevision            MilestoneKind = "REVISION"
)

// MilestoneAmounts is the fixed fee schedule, in currency units.
var MilestoneAmounts = map[MilestoneKind]float64{
	MilestoneDocumentReview:      5000,
	MilestoneAssessment:          25000,
	MilestoneCertificateIssuance: 2000,
	MilestoneRevision:            5000,
}

// allowedTransitions is the directed edge table of the lifecycle. The key is
// the current status, the value the set of statuses reachable from it. The
// table is a strict partial order except for REVISION_REQUESTED → SUBMITTED,
// the single allowed regression.
var allowedTransitions = map[Status][]Status{
	StatusDraft:                  {StatusSubmitted, StatusCancelled},
	StatusSubmitted:              {StatusPaymentPendingReview, StatusCancelled},
	StatusPaymentPendingReview:   {StatusPaymentConfirmedReview, StatusCancelled},
	StatusPaymentConfirmedReview: {StatusUnderReview},
	StatusUnderReview: {
		StatusRevisionRequested,
		StatusRejectedPaymentRequired,
		StatusReviewApproved,
		StatusRejected,
	},
	StatusRevisionRequested:          {StatusSubmitted, StatusCancelled},
	StatusRejectedPaymentRequired:    {StatusRevisionRequested, StatusRejected, StatusCancelled},
	StatusReviewApproved:             {StatusPaymentPendingAssessment},
	StatusPaymentPendingAssessment:   {StatusPaymentConfirmedAssessment, StatusCancelled},
	StatusPaymentConfirmedAssessment: {StatusOnlineAssessmentScheduled, StatusOnsiteAssessmentScheduled},
	StatusOnlineAssessmentScheduled:  {StatusOnlineAssessmentInProgress, StatusCancelled},
	StatusOnsiteAssessmentScheduled:  {StatusOnsiteAssessmentInProgress, StatusCancelled},
	StatusOnlineAssessmentInProgress: {StatusOnlineAssessmentCompleted},
	StatusOnsiteAssessmentInProgress: {StatusOnsiteAssessmentCompleted},
	StatusOnlineAssessmentCompleted:  {StatusCertified, StatusRejected},
	StatusOnsiteAssessmentCompleted:  {StatusCertified, StatusRejected},
	StatusCertified:                  {StatusSuspended, StatusExpired, StatusRevoked},
	StatusSuspended:                  {StatusCertified, StatusExpired, StatusRevoked},
	StatusRejected:                   {},
	StatusCancelled:                  {},
	StatusExpired:                    {},
	StatusRevoked:                    {},
}

// paymentGatedEdges maps a transition edge to the milestone kind that must be
// confirmed before the edge may commit.
var paymentGatedEdges = map[[2]Status]MilestoneKind{
	{StatusPaymentPendingReview, StatusPaymentConfirmedReview}:         MilestoneDocumentReview,
	{StatusPaymentPendingAssessment, StatusPaymentConfirmedAssessment}: MilestoneAssessment,
	{StatusOnlineAssessmentCompleted, StatusCertified}:                 MilestoneCertificateIssuance,
	{StatusOnsiteAssessmentCompleted, StatusCertified}:                 MilestoneCertificateIssuance,
	{StatusRejectedPaymentRequired, StatusRevisionRequested}:           MilestoneRevision,
}

// AllStatuses returns every status in the catalog, sorted so the UI-facing
// catalog dump is stable between calls.
func AllStatuses() []Status {
	statuses := make([]Status, 0, len(allowedTransitions))
	for s := range allowedTransitions {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	return statuses
}

// IsValidStatus reports whether s belongs to the catalog.
func IsValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from Status) []Status {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return []Status{}
	}
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether the (from, to) edge exists in the table.
func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0 && IsValidStatus(s)
}

// PaymentRequiredFor returns the milestone kind gating the (from, to) edge,
// if any.
func PaymentRequiredFor(from, to Status) (MilestoneKind, bool) {
	kind, ok := paymentGatedEdges[[2]Status{from, to}]
	return kind, ok
}

// IsRevisionEdge reports whether the edge represents a reviewer sending the
// application back for correction.
func IsRevisionEdge(from, to Status) bool {
	return from == StatusUnderReview && to == StatusRevisionRequested
}
