package handlers

import (
	"net/http"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/repositories"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type GigHandler struct {
	*BaseHandler
	gigService      services.GigService
	savedGigService services.SavedGigService
}

func NewGigHandler(base *BaseHandler, gigService services.GigService, savedGigService services.SavedGigService) *GigHandler {
	return &GigHandler{BaseHandler: base, gigService: gigService, savedGigService: savedGigService}
}

func (h *GigHandler) RegisterRoutes(r *gin.RouterGroup) {
	gigs := r.Group("/gigs")
	gigs.Use(middleware.AuthMiddleware())
	{
		gigs.GET("", h.Browse)
		gigs.POST("", h.Create)
		gigs.GET("/mine", h.ListMine)
		gigs.GET("/saved", h.ListSaved)
		gigs.GET("/:gigId", h.Get)
		gigs.PUT("/:gigId", h.Update)
		gigs.PATCH("/:gigId/status", h.UpdateStatus)
		gigs.DELETE("/:gigId", h.Delete)
		gigs.POST("/:gigId/save", h.Save)
		gigs.DELETE("/:gigId/save", h.Unsave)
	}
}

func (h *GigHandler) Browse(c *gin.Context) {
	var criteria repositories.GigCriteria
	if !h.BindQuery(c, &criteria) {
		return
	}

	resp, err := h.gigService.BrowseGigs(criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) Create(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.CreateGigRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.gigService.CreateGig(userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GigHandler) ListMine(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.gigService.ListMyGigs(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) Get(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.gigService.GetGig(c.Param("gigId"), userID, role)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) Update(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.UpdateGigRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.gigService.UpdateGig(c.Param("gigId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) UpdateStatus(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.gigService.UpdateGigStatus(c.Param("gigId"), userID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GigHandler) Delete(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.gigService.DeleteGig(c.Param("gigId"), userID, role); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GigHandler) Save(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.savedGigService.SaveGig(userID, c.Param("gigId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GigHandler) Unsave(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	if err := h.savedGigService.UnsaveGig(userID, c.Param("gigId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GigHandler) ListSaved(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	resp, err := h.savedGigService.ListSaved(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
