package handlers

import (
	"net/http"
	"strconv"
	"time"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/models"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"
	"gigwork_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AdminHandler groups the moderation and operations surface: gig approval,
// rating moderation, role changes, bulk sends, queue draining, audit logs.
type AdminHandler struct {
	*BaseHandler
	gigService          services.GigService
	ratingService       services.RatingService
	userService         services.UserService
	notificationService services.NotificationService
	queueService        services.QueueService
	auditRepo           repositories.AuditRepository
}

func NewAdminHandler(
	base *BaseHandler,
	gigService services.GigService,
	ratingService services.RatingService,
	userService services.UserService,
	notificationService services.NotificationService,
	queueService services.QueueService,
	auditRepo repositories.AuditRepository,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         base,
		gigService:          gigService,
		ratingService:       ratingService,
		userService:         userService,
		notificationService: notificationService,
		queueService:        queueService,
		auditRepo:           auditRepo,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/gigs/pending", h.ListPendingGigs)
		admin.GET("/gigs/expiring", h.ListExpiringGigs)
		admin.POST("/gigs/:gigId/approve", h.ApproveGig)
		admin.POST("/gigs/:gigId/reject", h.RejectGig)
		admin.POST("/gigs/mark-expired", h.MarkExpiredGigs)

		admin.GET("/ratings/flagged", h.ListFlaggedRatings)
		admin.POST("/ratings/:ratingId/moderate", h.ModerateRating)

		admin.PUT("/users/:userId/role", h.ChangeRole)

		admin.POST("/notifications/bulk-send", h.SendBulkNotification)

		admin.POST("/queue/process", h.ProcessQueues)
		admin.GET("/queue/counts", h.QueueCounts)

		admin.GET("/audit-log", h.ListAuditLog)
	}
}

func (h *AdminHandler) ListPendingGigs(c *gin.Context) {
	resp, err := h.gigService.ListPendingGigs()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListExpiringGigs(c *gin.Context) {
	within := 7 * 24 * time.Hour
	if v, err := time.ParseDuration(c.Query("within")); err == nil && v > 0 {
		within = v
	}

	resp, err := h.gigService.ListExpiringSoon(within)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ApproveGig(c *gin.Context) {
	adminID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.gigService.ApproveGig(c.Param("gigId"), adminID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) RejectGig(c *gin.Context) {
	adminID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.RejectGigRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.gigService.RejectGig(c.Param("gigId"), adminID, req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) MarkExpiredGigs(c *gin.Context) {
	count, err := h.gigService.MarkExpiredGigs()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}

func (h *AdminHandler) ListFlaggedRatings(c *gin.Context) {
	resp, err := h.ratingService.ListFlagged()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ModerateRating(c *gin.Context) {
	adminID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.ModerateRatingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.ratingService.ModerateRating(c.Param("ratingId"), adminID, req.Action); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ChangeRole(c *gin.Context) {
	adminID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.ChangeRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.userService.ChangeRole(c.Param("userId"), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) SendBulkNotification(c *gin.Context) {
	adminID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.SendBulkNotificationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.notificationService.SendBulkNotification(adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ProcessQueues(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	emailResult, err := h.queueService.ProcessEmailQueue(limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	pushResult, err := h.queueService.ProcessPushQueue(limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"email": emailResult, "push": pushResult})
}

func (h *AdminHandler) QueueCounts(c *gin.Context) {
	counts, err := h.queueService.Counts()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	var criteria repositories.AuditCriteria
	if !h.BindQuery(c, &criteria) {
		return
	}

	entries, total, err := h.auditRepo.List(criteria)
	if err != nil {
		h.HandleServiceError(c, apperrors.Wrap(err, apperrors.CodeDatabaseError, "audit", "failed to list audit log"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": total})
}
