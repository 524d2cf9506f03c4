package middleware

import (
	"strings"

	"gigwork_backend/internal/auth"
	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/models"
	"gigwork_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and stores the caller's
// identity on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewAuthenticationError("auth", "authorization header missing or invalid"))
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			apperrors.HandleError(c, apperrors.NewAuthenticationError("auth", "invalid token"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok || !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromContext reads the authenticated user ID, "" when absent.
func UserIDFromContext(c *gin.Context) string {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RoleFromContext reads the authenticated role.
func RoleFromContext(c *gin.Context) (models.UserRole, bool) {
	v, exists := c.Get("role")
	if !exists {
		return "", false
	}
	if role, ok := v.(models.UserRole); ok {
		return role, true
	}
	if s, ok := v.(string); ok {
		return models.UserRole(s), true
	}
	return "", false
}
