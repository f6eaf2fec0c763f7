package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/jisort/user-task-api/internal/errors"
	"github.com/jisort/user-task-api/internal/ratelimit"
)

// RateLimit throttles requests per identity: the hashed user id when the
// request is authenticated, the hashed client IP otherwise.
func RateLimit(store ratelimit.Store, maxAttempts int, decay time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := resolveRequestSignature(c)

		if store.TooManyAttempts(key, maxAttempts) {
			apierrors.TooManyRequests(c, "")
			c.Abort()
			return
		}

		store.Hit(key, decay)
		c.Next()
	}
}

func resolveRequestSignature(c *gin.Context) string {
	if userID, ok := GetUserID(c); ok {
		return ratelimit.Signature(strconv.FormatUint(userID, 10))
	}
	return ratelimit.Signature(c.ClientIP())
}
