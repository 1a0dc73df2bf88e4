package errorhandler

import (
	"context"
	"net/http"

	"github.com/creatorhub/creatorhub-api/internal/pkg/logger"
	"github.com/creatorhub/creatorhub-api/internal/pkg/response"
)

type contextKey string

// RequestIDKey is the context key the request id middleware stores under
const RequestIDKey contextKey = "request_id"

// HandleError logs the failure and sends a formatted error response
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("request_id", RequestID(ctx)).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// Internal logs an unexpected error and sends a generic 500
func Internal(ctx context.Context, w http.ResponseWriter, err error) {
	HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Str("request_id", RequestID(ctx)).
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}

// RequestID returns the request id stored in ctx, or "unknown"
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return "unknown"
}
