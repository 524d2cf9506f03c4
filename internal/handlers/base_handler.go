package handlers

import (
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/middleware"
	"gigwork_backend/internal/models"
	"gigwork_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds the request body, rendering a 400 on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWarn(c.Request.Context(), "failed to bind request body", "path", c.Request.URL.Path, "error", err.Error())
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters, rendering a 400 on failure.
func (h *BaseHandler) BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWarn(c.Request.Context(), "failed to bind query params", "path", c.Request.URL.Path, "error", err.Error())
		apperrors.HandleError(c, apperrors.NewBadRequestError("invalid query parameters: "+err.Error()))
		return false
	}
	return true
}

// HandleServiceError renders a service error, wrapping unknown ones as 500s.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(c.Request.Context(), "service error",
			"error", appErr.Message,
			"domain", appErr.Domain,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
		return
	}

	logger.CtxError(c.Request.Context(), "internal server error", "error", err.Error(), "path", c.Request.URL.Path)
	apperrors.HandleError(c, apperrors.InternalError(err))
}

// Caller returns the authenticated user's id and role, rendering a 401 when
// the context carries no identity.
func (h *BaseHandler) Caller(c *gin.Context) (string, models.UserRole, bool) {
	userID := middleware.UserIDFromContext(c)
	role, ok := middleware.RoleFromContext(c)
	if userID == "" || !ok {
		apperrors.HandleError(c, apperrors.NewAuthenticationError("auth", "user not authenticated"))
		return "", "", false
	}
	return userID, role, true
}
