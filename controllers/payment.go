package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"certification-portal-api/services"

	"github.com/gin-gonic/gin"
)

type ConfirmPaymentRequest struct {
	MilestoneRef string     `json:"milestone_ref" binding:"required"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
}

// ConfirmPayment is the payment-gateway completion callback. The gateway
// authenticates with the shared PAYMENT_CALLBACK_TOKEN and retries until it
// sees 2xx, so duplicates must answer 200.
func ConfirmPayment(c *gin.Context) {
	token := os.Getenv("PAYMENT_CALLBACK_TOKEN")
	if token == "" || c.GetHeader("X-Callback-Token") != token {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid callback token"})
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmedAt := time.Now()
	if req.ConfirmedAt != nil {
		confirmedAt = *req.ConfirmedAt
	}

	app, err := workflowEngine().ConfirmPayment(req.MilestoneRef, confirmedAt)
	if err != nil {
		if errors.Is(err, services.ErrDuplicatePayment) {
			c.JSON(http.StatusOK, gin.H{
				"message":       "Milestone already settled",
				"milestone_ref": req.MilestoneRef,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Payment confirmed",
		"milestone_ref": req.MilestoneRef,
		"application":   app,
	})
}
