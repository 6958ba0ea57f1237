package routes

import (
	"certification-portal-api/controllers"
	"certification-portal-api/middleware"
	"certification-portal-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)

			// Payment gateway completion callback (token-checked in handler)
			public.POST("/payments/confirm", controllers.ConfirmPayment)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Certification Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Status catalog shared with the UI
			protected.GET("/statuses", controllers.GetStatusCatalog)

			// Notifications
			protected.GET("/notifications", controllers.GetNotifications)
			protected.PUT("/notifications/:id/read", controllers.MarkNotificationRead)

			// Certification applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/history", controllers.GetApplicationHistory)
				applications.GET("/:id/milestones", controllers.GetApplicationMilestones)

				// Only applicants open new applications
				applications.POST("", middleware.RequireRole(models.RoleApplicant), controllers.CreateApplication)

				// Workflow moves; per-role target checks live in the handler
				applications.POST("/:id/transitions", controllers.RequestTransition)
			}
		}

	}

	// 404 handler for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
