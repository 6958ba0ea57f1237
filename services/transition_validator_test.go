package services

import (
	"testing"

	"certification-portal-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appIn(status Status) models.Application {
	return models.Application{
		ApplicationID:    1,
		Status:           string(status),
		MaxFreeRevisions: DefaultMaxFreeRevisions,
	}
}

func effectKinds(effects []SideEffect) []SideEffectKind {
	var kinds []SideEffectKind
	for _, e := range effects {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestValidateTransitionTable(t *testing.T) {
	cases := []struct {
		name      string
		app       models.Application
		requested Status
		reason    string
		gate      mapGate
		wantOK    bool
		target    Status
		kinds     []SideEffectKind
		deny      error
	}{
		{
			name:      "draft cannot jump into review",
			app:       appIn(StatusDraft),
			requested: StatusUnderReview,
			wantOK:    false,
			deny:      &IllegalTransitionError{From: StatusDraft, To: StatusUnderReview},
		},
		{
			name:      "draft submits",
			app:       appIn(StatusDraft),
			requested: StatusSubmitted,
			wantOK:    true,
			target:    StatusSubmitted,
			kinds:     []SideEffectKind{EffectSetTimestamp},
		},
		{
			name:      "submission raises the review fee",
			app:       appIn(StatusSubmitted),
			requested: StatusPaymentPendingReview,
			wantOK:    true,
			target:    StatusPaymentPendingReview,
			kinds:     []SideEffectKind{EffectCreateMilestone},
		},
		{
			name:      "review fee unpaid blocks confirmation",
			app:       appIn(StatusPaymentPendingReview),
			requested: StatusPaymentConfirmedReview,
			wantOK:    false,
			deny:      &PaymentRequiredError{From: StatusPaymentPendingReview, To: StatusPaymentConfirmedReview, Kind: MilestoneDocumentReview},
		},
		{
			name:      "review fee paid passes the gate",
			app:       appIn(StatusPaymentPendingReview),
			requested: StatusPaymentConfirmedReview,
			gate:      mapGate{MilestoneDocumentReview: true},
			wantOK:    true,
			target:    StatusPaymentConfirmedReview,
		},
		{
			name:      "revision needs a reason",
			app:       appIn(StatusUnderReview),
			requested: StatusRevisionRequested,
			wantOK:    false,
			deny:      ErrReasonRequired,
		},
		{
			name:      "free revision goes through",
			app:       appIn(StatusUnderReview),
			requested: StatusRevisionRequested,
			reason:    "missing safety documents",
			wantOK:    true,
			target:    StatusRevisionRequested,
			kinds:     []SideEffectKind{EffectIncrementRevision},
		},
		{
			name: "over-quota revision redirects to the fee stop",
			app: models.Application{
				ApplicationID:        1,
				Status:               string(StatusUnderReview),
				RevisionCountCurrent: 2,
				MaxFreeRevisions:     2,
			},
			requested: StatusRevisionRequested,
			reason:    "incomplete process manual",
			wantOK:    true,
			target:    StatusRejectedPaymentRequired,
			kinds:     []SideEffectKind{EffectCreateMilestone},
		},
		{
			name:      "entering the fee stop directly raises the revision fee",
			app:       appIn(StatusUnderReview),
			requested: StatusRejectedPaymentRequired,
			wantOK:    true,
			target:    StatusRejectedPaymentRequired,
			kinds:     []SideEffectKind{EffectCreateMilestone},
		},
		{
			name:      "rejection needs a reason",
			app:       appIn(StatusUnderReview),
			requested: StatusRejected,
			wantOK:    false,
			deny:      ErrReasonRequired,
		},
		{
			name:      "rejection with reason stamps the decision",
			app:       appIn(StatusUnderReview),
			requested: StatusRejected,
			reason:    "scope does not qualify",
			wantOK:    true,
			target:    StatusRejected,
			kinds:     []SideEffectKind{EffectSetTimestamp},
		},
		{
			name:      "certification blocked until issuance fee confirmed",
			app:       appIn(StatusOnlineAssessmentCompleted),
			requested: StatusCertified,
			wantOK:    false,
			deny:      &PaymentRequiredError{From: StatusOnlineAssessmentCompleted, To: StatusCertified, Kind: MilestoneCertificateIssuance},
		},
		{
			name:      "certification issues the certificate",
			app:       appIn(StatusOnlineAssessmentCompleted),
			requested: StatusCertified,
			gate:      mapGate{MilestoneCertificateIssuance: true},
			wantOK:    true,
			target:    StatusCertified,
			kinds:     []SideEffectKind{EffectSetTimestamp, EffectIssueCertificate},
		},
		{
			name:      "reinstatement does not reissue the certificate",
			app:       appIn(StatusSuspended),
			requested: StatusCertified,
			gate:      mapGate{MilestoneCertificateIssuance: true},
			wantOK:    true,
			target:    StatusCertified,
			kinds:     []SideEffectKind{EffectSetTimestamp},
		},
		{
			name:      "scheduling records the mode",
			app:       appIn(StatusPaymentConfirmedAssessment),
			requested: StatusOnsiteAssessmentScheduled,
			wantOK:    true,
			target:    StatusOnsiteAssessmentScheduled,
			kinds:     []SideEffectKind{EffectSetTimestamp, EffectScheduleAssessment},
		},
		{
			name:      "terminal states have no exits",
			app:       appIn(StatusRejected),
			requested: StatusSubmitted,
			wantOK:    false,
			deny:      &IllegalTransitionError{From: StatusRejected, To: StatusSubmitted},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gate := tc.gate
			if gate == nil {
				gate = mapGate{}
			}

			decision, err := ValidateTransition(tc.app, tc.requested, tc.reason, gate)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, decision.Allowed)

			if !tc.wantOK {
				require.Error(t, decision.Deny)
				assert.Equal(t, tc.deny.Error(), decision.Deny.Error())
				return
			}

			assert.Equal(t, tc.target, decision.Target)
			assert.Equal(t, tc.kinds, effectKinds(decision.Effects))
		})
	}
}

func TestValidateTransitionIsDeterministic(t *testing.T) {
	app := appIn(StatusUnderReview)
	gate := mapGate{}

	first, err := ValidateTransition(app, StatusRevisionRequested, "fix section 3", gate)
	require.NoError(t, err)
	second, err := ValidateTransition(app, StatusRevisionRequested, "fix section 3", gate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRedirectedRevisionCarriesTheFee(t *testing.T) {
	app := models.Application{
		ApplicationID:        7,
		Status:               string(StatusUnderReview),
		RevisionCountCurrent: 3,
		MaxFreeRevisions:     2,
	}

	decision, err := ValidateTransition(app, StatusRevisionRequested, "still incomplete", mapGate{})
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	assert.Equal(t, StatusRejectedPaymentRequired, decision.Target)

	require.Len(t, decision.Effects, 1)
	assert.Equal(t, EffectCreateMilestone, decision.Effects[0].Kind)
	assert.Equal(t, MilestoneRevision, decision.Effects[0].Milestone)
}
