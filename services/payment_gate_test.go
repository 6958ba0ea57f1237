package services

import (
	"testing"
	"time"

	"certification-portal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMilestone(store *memoryStore, appID int, kind MilestoneKind, ref string) {
	store.milestones = append(store.milestones, NewMilestone(appID, kind, ref, time.Now()))
}

func TestConfirmSettlesPendingMilestone(t *testing.T) {
	store := newMemoryStore()
	gate := NewPaymentGate(store)
	seedMilestone(store, 1, MilestoneDocumentReview, "ref-review")

	paidAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	milestone, followUps, err := gate.Confirm("ref-review", paidAt)
	require.NoError(t, err)

	assert.Equal(t, models.MilestoneStatusConfirmed, milestone.Status)
	require.NotNil(t, milestone.PaidAt)
	assert.Equal(t, paidAt, *milestone.PaidAt)
	assert.Equal(t, 5000.0, milestone.Amount)

	// The review fee walks the application all the way into review.
	assert.Equal(t, []Status{StatusPaymentConfirmedReview, StatusUnderReview}, followUps)

	confirmed, err := gate.HasConfirmedMilestone(1, MilestoneDocumentReview)
	require.NoError(t, err)
	assert.True(t, confirmed)
}

func TestConfirmFollowUpsPerKind(t *testing.T) {
	cases := []struct {
		kind      MilestoneKind
		followUps []Status
	}{
		{MilestoneDocumentReview, []Status{StatusPaymentConfirmedReview, StatusUnderReview}},
		{MilestoneAssessment, []Status{StatusPaymentConfirmedAssessment}},
		{MilestoneRevision, []Status{StatusRevisionRequested}},
		{MilestoneCertificateIssuance, []Status{StatusCertified}},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			store := newMemoryStore()
			gate := NewPaymentGate(store)
			seedMilestone(store, 1, tc.kind, "ref")

			_, followUps, err := gate.Confirm("ref", time.Now())
			require.NoError(t, err)
			assert.Equal(t, tc.followUps, followUps)
		})
	}
}

func TestConfirmDuplicateIsRejectedAndNoOp(t *testing.T) {
	store := newMemoryStore()
	gate := NewPaymentGate(store)
	seedMilestone(store, 1, MilestoneAssessment, "ref-assessment")

	first := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	_, _, err := gate.Confirm("ref-assessment", first)
	require.NoError(t, err)

	_, _, err = gate.Confirm("ref-assessment", first.Add(time.Hour))
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	// The original confirmation time survives the retry.
	milestones, err := store.MilestonesByApplication(1)
	require.NoError(t, err)
	require.Len(t, milestones, 1)
	require.NotNil(t, milestones[0].PaidAt)
	assert.Equal(t, first, *milestones[0].PaidAt)
}

func TestConfirmUnknownMilestone(t *testing.T) {
	gate := NewPaymentGate(newMemoryStore())

	_, _, err := gate.Confirm("no-such-ref", time.Now())
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestHasConfirmedMilestoneIgnoresOtherKinds(t *testing.T) {
	store := newMemoryStore()
	gate := NewPaymentGate(store)
	seedMilestone(store, 1, MilestoneDocumentReview, "ref-1")
	_, _, err := gate.Confirm("ref-1", time.Now())
	require.NoError(t, err)

	confirmed, err := gate.HasConfirmedMilestone(1, MilestoneAssessment)
	require.NoError(t, err)
	assert.False(t, confirmed)

	confirmed, err = gate.HasConfirmedMilestone(2, MilestoneDocumentReview)
	require.NoError(t, err)
	assert.False(t, confirmed)
}
