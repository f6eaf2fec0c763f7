package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jisort/user-task-api/internal/services"
)

// TrackActivity touches the authenticated user's last_activity_at on every
// request. Must run after RequireAuth.
func TrackActivity(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := GetUserID(c); ok {
			// A failed touch must not take down the request
			_ = authService.TouchActivity(userID)
		}
		c.Next()
	}
}
