package routes

import (
	"net/http"

	"gigwork_backend/internal/handlers"
	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes mounts all HTTP endpoints on the engine.
func SetupRoutes(r *gin.Engine, container *services.ServiceContainer) {
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	base := handlers.NewBaseHandler()

	api := r.Group("/api/v1")
	{
		handlers.NewAuthHandler(base, container.UserService).RegisterRoutes(api)
		handlers.NewGigHandler(base, container.GigService, container.SavedGigService).RegisterRoutes(api)
		handlers.NewApplicationHandler(base, container.ApplicationService).RegisterRoutes(api)
		handlers.NewRatingHandler(base, container.RatingService).RegisterRoutes(api)
		handlers.NewNotificationHandler(base, container.NotificationService).RegisterRoutes(api)
		handlers.NewAdminHandler(
			base,
			container.GigService,
			container.RatingService,
			container.UserService,
			container.NotificationService,
			container.QueueService,
			container.AuditRepo,
		).RegisterRoutes(api)
	}
}
