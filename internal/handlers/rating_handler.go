package handlers

import (
	"net/http"

	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/services"
	"gigwork_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	*BaseHandler
	ratingService services.RatingService
}

func NewRatingHandler(base *BaseHandler, ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{BaseHandler: base, ratingService: ratingService}
}

func (h *RatingHandler) RegisterRoutes(r *gin.RouterGroup) {
	ratings := r.Group("/ratings")
	ratings.Use(middleware.AuthMiddleware())
	{
		ratings.POST("", h.Create)
		ratings.PUT("/:ratingId", h.Update)
		ratings.POST("/:ratingId/flag", h.Flag)
	}

	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/:userId/ratings", h.ListForUser)
	}
}

func (h *RatingHandler) Create(c *gin.Context) {
	userID, role, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.CreateRatingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.ratingService.CreateRating(userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RatingHandler) Update(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.UpdateRatingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.ratingService.UpdateRating(c.Param("ratingId"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RatingHandler) Flag(c *gin.Context) {
	userID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.FlagRatingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.ratingService.FlagRating(c.Param("ratingId"), userID, req.Reason); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RatingHandler) ListForUser(c *gin.Context) {
	if _, _, ok := h.Caller(c); !ok {
		return
	}

	resp, err := h.ratingService.GetUserRatings(c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
