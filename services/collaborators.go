package services

import (
	"fmt"
	"log"
	"time"

	"certification-portal-api/config"
	"certification-portal-api/models"

	"gorm.io/gorm"
)

// statusNotices maps committed statuses to the user-facing message shown in
// the portal's notification feed.
var statusNotices = map[Status]struct {
	title string
	body  string
	kind  string
}{
	StatusSubmitted:                  {"Application submitted", "Your application was submitted and is awaiting the document-review fee.", "info"},
	StatusPaymentPendingReview:       {"Review fee due", "Please pay the document-review fee to start the review.", "warning"},
	StatusUnderReview:                {"Review started", "Your application is now under review.", "info"},
	StatusRevisionRequested:          {"Revision requested", "The reviewer sent your application back for correction.", "warning"},
	StatusRejectedPaymentRequired:    {"Revision fee due", "Your free revisions are used up. Pay the revision fee to continue.", "warning"},
	StatusReviewApproved:             {"Review approved", "Document review passed. The assessment fee is now due.", "success"},
	StatusPaymentPendingAssessment:   {"Assessment fee due", "Please pay the assessment fee to schedule your assessment.", "warning"},
	StatusOnlineAssessmentScheduled:  {"Assessment scheduled", "Your online assessment has been scheduled.", "info"},
	StatusOnsiteAssessmentScheduled:  {"Assessment scheduled", "Your onsite assessment has been scheduled.", "info"},
	StatusOnlineAssessmentCompleted:  {"Assessment completed", "Your assessment is complete. The certificate-issuance fee is now due.", "info"},
	StatusOnsiteAssessmentCompleted:  {"Assessment completed", "Your assessment is complete. The certificate-issuance fee is now due.", "info"},
	StatusCertified:                  {"Certified", "Your certification has been issued.", "success"},
	StatusRejected:                   {"Application rejected", "Your application was rejected.", "error"},
	StatusCancelled:                  {"Application cancelled", "Your application was cancelled.", "info"},
	StatusSuspended:                  {"Certification suspended", "Your certification has been suspended.", "error"},
	StatusExpired:                    {"Certification expired", "Your certification has expired.", "warning"},
	StatusRevoked:                    {"Certification revoked", "Your certification has been revoked.", "error"},
}

// PortalNotifier writes notification rows for the applicant and sends a
// best-effort email. Failures are logged only; a committed transition is
// never undone because a notification could not be delivered.
type PortalNotifier struct {
	db *gorm.DB
}

// NewPortalNotifier builds a notifier over the given DB handle.
func NewPortalNotifier(db *gorm.DB) *PortalNotifier {
	return &PortalNotifier{db: db}
}

func (n *PortalNotifier) NotifyTransition(app models.Application, from *Status, to Status, reason string) {
	notice, ok := statusNotices[to]
	if !ok {
		return
	}

	message := notice.body
	if reason != "" {
		message = fmt.Sprintf("%s Reason: %s", notice.body, reason)
	}

	appID := uint(app.ApplicationID)
	now := time.Now()
	notification := models.Notification{
		UserID:               uint(app.UserID),
		Title:                notice.title,
		Message:              message,
		Type:                 notice.kind,
		RelatedApplicationID: &appID,
		CreateAt:             now,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to save notification for application %d: %v", app.ApplicationID, err)
	}

	var user models.User
	if err := n.db.Where("user_id = ? AND delete_at IS NULL", app.UserID).First(&user).Error; err != nil {
		return
	}
	html := fmt.Sprintf("<p>%s</p><p>Application: %s</p>", message, app.ApplicationNumber)
	if err := config.SendMail([]string{user.Email}, notice.title, html); err != nil {
		log.Printf("Warning: failed to email %s about application %d: %v", user.Email, app.ApplicationID, err)
	}
}
