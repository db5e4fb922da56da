package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	apperrors "finboard/internal/errors"
	"finboard/internal/logger"
)

// ErrorHandler renders errors that handlers attached with c.Error and turns
// panics into INTERNAL_ERROR responses. Responses that already started, such
// as change streams and exports, are left alone and only logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Named("http")

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.Errorw("panic in handler",
				"panic", fmt.Sprint(rec),
				"request_id", c.GetString(RequestIDKey),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			if !c.Writer.Written() {
				renderError(c, apperrors.ErrInternalServer)
			}
			c.Abort()
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if c.Writer.Written() {
			log.Warnw("error after response started",
				"error", err.Error(),
				"request_id", c.GetString(RequestIDKey),
				"path", c.Request.URL.Path,
			)
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				log.Errorw("app error",
					"code", appErr.Code,
					"internal", appErr.Internal.Error(),
					"request_id", c.GetString(RequestIDKey),
					"path", c.Request.URL.Path,
				)
			}
			renderError(c, appErr)
			return
		}

		log.Errorw("unexpected error",
			"error", err.Error(),
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		renderError(c, apperrors.ErrInternalServer)
	}
}

func renderError(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
