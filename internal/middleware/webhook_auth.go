package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
)

// WebhookAuthMiddleware validates the X-API-Key header against the
// configured webhook key. With no key configured the endpoints are disabled.
func WebhookAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrWebhookDisabled)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
