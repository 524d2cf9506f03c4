package handlers

import (
	"net/http"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.GET("/summary", h.Summary)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PUT("/:notificationId/read", h.MarkAsRead)
		notifications.PUT("/read-all", h.MarkAllAsRead)
		notifications.GET("/preferences", h.GetPreferences)
		notifications.PUT("/preferences", h.UpdatePreference)
		notifications.PUT("/preferences/bulk", h.UpdateBulkPreferences)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var criteria repositories.NotificationCriteria
	if !h.BindQuery(c, &criteria) {
		return
	}

	resp, err := h.notificationService.GetUserNotifications(userID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) Summary(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.notificationService.GetSummary(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(userID, c.Param("notificationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.notificationService.GetPreferences(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UpdatePreference(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.PreferenceUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.notificationService.UpdatePreference(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) UpdateBulkPreferences(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.BulkPreferenceUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.notificationService.UpdateBulkPreferences(userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
