package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/constants"
	apierrors "github.com/jisort/user-task-api/internal/errors"
	"github.com/jisort/user-task-api/internal/models"
	"github.com/jisort/user-task-api/internal/services"
)

// RequireAuth authenticates the request's bearer token and stores the
// resolved user, its id, and the token id in the request context.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, token, err := authService.AuthenticateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Set(constants.ContextKeyTokenID, token.ID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetTokenID retrieves the id of the token used for the current request
func GetTokenID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyTokenID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint64)
	return id, ok
}
