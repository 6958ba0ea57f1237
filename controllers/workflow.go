package controllers

import (
	"errors"
	"net/http"

	"certification-portal-api/models"
	"certification-portal-api/services"
	"certification-portal-api/utils"

	"github.com/gin-gonic/gin"
)

type TransitionRequest struct {
	RequestedStatus string            `json:"requested_status" binding:"required"`
	Reason          string            `json:"reason"`
	Metadata        map[string]string `json:"metadata"`
}

// applicantTargets are the transitions an applicant may request on their own
// application. Everything else is reviewer or admin territory.
var applicantTargets = map[services.Status]bool{
	services.StatusSubmitted:            true,
	services.StatusPaymentPendingReview: true,
	services.StatusCancelled:            true,
}

// adminOnlyTargets are post-issuance lifecycle moves.
var adminOnlyTargets = map[services.Status]bool{
	services.StatusSuspended: true,
	services.StatusExpired:   true,
	services.StatusRevoked:   true,
}

// RequestTransition moves an application through the certification workflow
func RequestTransition(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested := services.Status(req.RequestedStatus)
	if !services.IsValidStatus(requested) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status", "status": req.RequestedStatus})
		return
	}

	userID := c.GetInt("userID")
	roleID := c.GetInt("roleID")
	if roleID == models.RoleApplicant && !applicantTargets[requested] {
		c.JSON(http.StatusForbidden, gin.H{"error": "This transition requires a reviewer"})
		return
	}
	if roleID != models.RoleAdmin && adminOnlyTargets[requested] {
		c.JSON(http.StatusForbidden, gin.H{"error": "This transition requires an administrator"})
		return
	}

	// Reason text ends up in the immutable audit trail; clean it first.
	reason := utils.SanitizeInput(req.Reason)

	updated, err := workflowEngine().RequestTransition(app.ApplicationID, requested, userID, reason, req.Metadata)
	if err != nil {
		status, body := transitionErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application":      updated,
		"requested_status": req.RequestedStatus,
		"committed_status": updated.Status,
	})
}

// GetApplicationHistory returns the immutable audit trail, oldest first
func GetApplicationHistory(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	history, err := workflowEngine().GetHistory(app.ApplicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history, "total": len(history)})
}

// GetApplicationMilestones lists the fee obligations of an application
func GetApplicationMilestones(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}

	milestones, err := workflowEngine().GetMilestones(app.ApplicationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load milestones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones, "total": len(milestones)})
}

// GetStatusCatalog exposes the closed status list and transition table so
// the UI renders from the same source of truth the engine enforces
func GetStatusCatalog(c *gin.Context) {
	catalog := make([]gin.H, 0)
	for _, s := range services.AllStatuses() {
		catalog = append(catalog, gin.H{
			"status":              s,
			"terminal":            services.IsTerminal(s),
			"allowed_transitions": services.AllowedTransitions(s),
		})
	}
	c.JSON(http.StatusOK, gin.H{"statuses": catalog})
}

// transitionErrorResponse maps engine errors to machine-readable rejections
// so the UI can render the specific blocking condition.
func transitionErrorResponse(err error) (int, gin.H) {
	var illegal *services.IllegalTransitionError
	if errors.As(err, &illegal) {
		return http.StatusConflict, gin.H{
			"error": illegal.Error(),
			"code":  "ILLEGAL_TRANSITION",
			"from":  illegal.From,
			"to":    illegal.To,
		}
	}

	var unpaid *services.PaymentRequiredError
	if errors.As(err, &unpaid) {
		return http.StatusPaymentRequired, gin.H{
			"error":     unpaid.Error(),
			"code":      "PAYMENT_REQUIRED",
			"milestone": unpaid.Kind,
		}
	}

	if errors.Is(err, services.ErrReasonRequired) {
		return http.StatusBadRequest, gin.H{"error": err.Error(), "code": "REASON_REQUIRED"}
	}
	if errors.Is(err, services.ErrConcurrentModification) {
		return http.StatusConflict, gin.H{"error": err.Error(), "code": "CONCURRENT_MODIFICATION"}
	}
	if errors.Is(err, services.ErrApplicationNotFound) {
		return http.StatusNotFound, gin.H{"error": err.Error(), "code": "NOT_FOUND"}
	}
	return http.StatusInternalServerError, gin.H{"error": "Transition failed", "code": "STORAGE_ERROR"}
}
