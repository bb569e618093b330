// Package middleware provides HTTP middleware for the VME analyzer API.
//
// Import Path: vme-analyzer.io/analyzer/internal/api/middleware
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// ErrorHandler renders the last error a handler added with c.Error as
// {code, message[, field_errors]}. Responses already written are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		renderError(c, c.Errors.Last().Err)
	}
}

func renderError(c *gin.Context, err error) {
	rid := zap.String("request_id", GetRequestID(c.Request.Context()))

	appErr, ok := apperrors.As(err)
	if !ok {
		logger.Error("Unhandled request error", rid, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    apperrors.CodeInternal,
			"message": "An internal error occurred",
		})
		return
	}

	logger.Warn("Request error", rid,
		zap.String("code", appErr.Code),
		zap.Int("status", appErr.HTTPStatus),
		zap.Error(err),
	)
	body := gin.H{"code": appErr.Code, "message": appErr.Message}
	if len(appErr.FieldErrors) > 0 {
		body["field_errors"] = appErr.FieldErrors
	}
	c.JSON(appErr.HTTPStatus, body)
}
