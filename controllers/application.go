package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"certification-portal-api/config"
	"certification-portal-api/models"
	"certification-portal-api/services"

	"github.com/gin-gonic/gin"
)

var (
	engineOnce sync.Once
	engine     *services.WorkflowOrchestrator
)

// workflowEngine wires the orchestrator to the portal database once. The
// engine itself takes its ports as constructor arguments; only this edge
// binds them to the global DB handle.
func workflowEngine() *services.WorkflowOrchestrator {
	engineOnce.Do(func() {
		store := services.NewGormWorkflowStore(config.DB)
		engine = services.NewWorkflowOrchestrator(store, services.NewPortalNotifier(config.DB))
	})
	return engine
}

type CreateApplicationRequest struct {
	MaxFreeRevisions *int `json:"max_free_revisions"`
}

// CreateApplication opens a new application in DRAFT for the caller
func CreateApplication(c *gin.Context) {
	userID := c.GetInt("userID")

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	maxFree := services.DefaultMaxFreeRevisions
	if req.MaxFreeRevisions != nil && *req.MaxFreeRevisions >= 0 {
		maxFree = *req.MaxFreeRevisions
	}

	app, err := workflowEngine().CreateApplication(userID, maxFree)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// GetApplications lists applications: own for applicants, all for staff
func GetApplications(c *gin.Context) {
	userID := c.GetInt("userID")
	roleID := c.GetInt("roleID")

	query := config.DB.Model(&models.Application{}).Order("application_id DESC")
	if roleID == models.RoleApplicant {
		query = query.Where("user_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		if !services.IsValidStatus(services.Status(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var apps []models.Application
	if err := query.Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps, "total": len(apps)})
}

// GetApplication returns one application visible to the caller
func GetApplication(c *gin.Context) {
	app, ok := loadVisibleApplication(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": app})
}

// loadVisibleApplication resolves :id and enforces that applicants only see
// their own applications.
func loadVisibleApplication(c *gin.Context) (models.Application, bool) {
	appID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return models.Application{}, false
	}

	app, err := workflowEngine().GetApplication(appID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return models.Application{}, false
	}

	roleID := c.GetInt("roleID")
	if roleID == models.RoleApplicant && app.UserID != c.GetInt("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your application"})
		return models.Application{}, false
	}
	return app, true
}
