package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsClosed(t *testing.T) {
	statuses := AllStatuses()
	assert.Len(t, statuses, 22)

	// Every edge target must itself be a catalog member.
	for _, from := range statuses {
		for _, to := range AllowedTransitions(from) {
			assert.True(t, IsValidStatus(to), "edge %s -> %s leaves the catalog", from, to)
		}
	}

	assert.False(t, IsValidStatus(Status("APPROVED")))
	assert.False(t, IsValidStatus(Status("")))
}

func TestAllStatusesIsStable(t *testing.T) {
	first := AllStatuses()
	second := AllStatuses()
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1], first[i], "catalog listing must be sorted")
	}
}

func TestEveryStatusReachableFromDraft(t *testing.T) {
	visited := map[Status]bool{StatusDraft: true}
	queue := []Status{StatusDraft}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range AllowedTransitions(current) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, s := range AllStatuses() {
		assert.True(t, visited[s], "status %s is unreachable from DRAFT", s)
	}
}

func TestCanTransitionExhaustive(t *testing.T) {
	// Positive cases are exactly the table; every other pair must be denied.
	allowed := make(map[[2]Status]bool)
	for _, from := range AllStatuses() {
		for _, to := range AllowedTransitions(from) {
			allowed[[2]Status{from, to}] = true
		}
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			got := CanTransition(from, to)
			assert.Equal(t, allowed[[2]Status{from, to}], got, "CanTransition(%s, %s)", from, to)
		}
	}
}

func TestSingleBackEdge(t *testing.T) {
	assert.True(t, CanTransition(StatusRevisionRequested, StatusSubmitted))

	// No other edge returns to an earlier application-phase status.
	assert.False(t, CanTransition(StatusUnderReview, StatusSubmitted))
	assert.False(t, CanTransition(StatusReviewApproved, StatusUnderReview))
	assert.False(t, CanTransition(StatusSubmitted, StatusDraft))
	assert.False(t, CanTransition(StatusCertified, StatusDraft))
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusRejected, StatusCancelled, StatusExpired, StatusRevoked}
	for _, s := range terminal {
		assert.True(t, IsTerminal(s), "%s should be terminal", s)
		assert.Empty(t, AllowedTransitions(s))
	}

	// CERTIFIED keeps its post-issuance lifecycle edges.
	assert.False(t, IsTerminal(StatusCertified))
	assert.False(t, IsTerminal(StatusDraft))
	assert.False(t, IsTerminal(Status("UNKNOWN")))
}

func TestPaymentRequiredFor(t *testing.T) {
	cases := []struct {
		from, to Status
		kind     MilestoneKind
	}{
		{StatusPaymentPendingReview, StatusPaymentConfirmedReview, MilestoneDocumentReview},
		{StatusPaymentPendingAssessment, StatusPaymentConfirmedAssessment, MilestoneAssessment},
		{StatusOnlineAssessmentCompleted, StatusCertified, MilestoneCertificateIssuance},
		{StatusOnsiteAssessmentCompleted, StatusCertified, MilestoneCertificateIssuance},
		{StatusRejectedPaymentRequired, StatusRevisionRequested, MilestoneRevision},
	}
	for _, tc := range cases {
		kind, gated := PaymentRequiredFor(tc.from, tc.to)
		require.True(t, gated, "%s -> %s should be payment gated", tc.from, tc.to)
		assert.Equal(t, tc.kind, kind)
	}

	_, gated := PaymentRequiredFor(StatusDraft, StatusSubmitted)
	assert.False(t, gated)
	_, gated = PaymentRequiredFor(StatusUnderReview, StatusReviewApproved)
	assert.False(t, gated)
}

func TestIsRevisionEdge(t *testing.T) {
	assert.True(t, IsRevisionEdge(StatusUnderReview, StatusRevisionRequested))
	assert.False(t, IsRevisionEdge(StatusRejectedPaymentRequired, StatusRevisionRequested))
	assert.False(t, IsRevisionEdge(StatusUnderReview, StatusReviewApproved))
}

func TestFeeSchedule(t *testing.T) {
	assert.Equal(t, 5000.0, MilestoneAmounts[MilestoneDocumentReview])
	assert.Equal(t, 25000.0, MilestoneAmounts[MilestoneAssessment])
	assert.Equal(t, 2000.0, MilestoneAmounts[MilestoneCertificateIssuance])
	assert.Equal(t, 5000.0, MilestoneAmounts[MilestoneRevision])
}
