package handlers

import (
	"net/http"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{BaseHandler: base, applicationService: applicationService}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.POST("", h.Create)
		applications.GET("/mine", h.ListMine)
		applications.GET("/:applicationId", h.Get)
		applications.POST("/:applicationId/select", h.Select)
		applications.PATCH("/:applicationId/status", h.UpdateStatus)
		applications.POST("/:applicationId/withdraw", h.Withdraw)
	}

	gigs := r.Group("/gigs")
	gigs.Use(middleware.AuthMiddleware())
	{
		gigs.GET("/:gigId/applications", h.ListByGig)
		gigs.POST("/:gigId/applications/bulk-update", h.BulkUpdate)
	}
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.CreateApplicationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.CreateApplication(userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.ListMine(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.GetApplication(c.Param("applicationId"), userID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Select(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.SelectCandidate(c.Param("applicationId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.UpdateApplicationStatus(c.Param("applicationId"), userID, role, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.applicationService.WithdrawApplication(c.Param("applicationId"), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ApplicationHandler) ListByGig(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.ListByGig(c.Param("gigId"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) BulkUpdate(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateApplicationsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.BulkUpdateApplications(c.Param("gigId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
