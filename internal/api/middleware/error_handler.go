// Package middleware provides HTTP middleware for the eventforge API.
//
// Import Path: eventforge.io/eventforge/internal/api/middleware
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "eventforge.io/eventforge/internal/pkg/errors"
)

// ErrorHandler renders the last error added with c.Error. AppErrors keep
// their status, code and ordered field errors; anything else becomes a 500
// whose cause is logged but not sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := RequestLogger(c.Request.Context())

		appErr, ok := apperrors.IsAppError(err)
		if !ok {
			log.Error("Unhandled request error",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    apperrors.CodeInternal,
				"message": "An internal error occurred",
			})
			return
		}

		fields := []zap.Field{
			zap.String("code", appErr.Code),
			zap.Int("status", appErr.HTTPStatus),
			zap.Int("field_errors", len(appErr.FieldErrors)),
		}
		if len(appErr.Params) > 0 {
			fields = append(fields, zap.Any("params", appErr.Params))
		}
		if appErr.Err != nil {
			fields = append(fields, zap.Error(appErr.Err))
		}
		log.Warn(appErr.Message, fields...)

		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if len(appErr.FieldErrors) > 0 {
			body["field_errors"] = appErr.FieldErrors
		}
		c.JSON(appErr.HTTPStatus, body)
	}
}
