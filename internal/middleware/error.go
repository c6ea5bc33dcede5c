package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-search/backend/internal/apperror"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Parameter string `json:"parameter,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders the last error attached with c.Error as JSON.
// Server-side failures are logged with their cause; clients only see the
// error's public message.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			appErr = &apperror.Error{
				Kind:    apperror.Internal,
				Message: "internal server error",
				Cause:   err,
			}
		}

		status := appErr.StatusCode()
		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(ctx, "request failed",
				"kind", appErr.Kind.String(), "path", c.Request.URL.Path, "error", err)
		} else {
			logger.InfoContext(ctx, "request rejected",
				"kind", appErr.Kind.String(), "path", c.Request.URL.Path, "error", err)
		}

		c.AbortWithStatusJSON(status, ErrorResponse{
			Error:     appErr.Kind.String(),
			Message:   appErr.Message,
			Parameter: appErr.Parameter,
			RequestID: GetRequestID(c),
		})
	}
}

// Recovery turns a panic into an Internal error for ErrorHandler to render.
// It must be registered after ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		panicRecoveries.Inc()
		_ = c.Error(&apperror.Error{
			Kind:    apperror.Internal,
			Message: "internal server error",
			Cause:   fmt.Errorf("panic: %v", recovered),
		})
		c.Abort()
	})
}
