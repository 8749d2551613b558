package api

import (
	"context"

	"github.com/lei/ci-portal/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const contextKeyRequestID contextKey = "request_id"

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetLogger retrieves the request-scoped logger from context
func GetLogger(ctx context.Context) *logger.Logger {
	if l, ok := logger.FromContext(ctx); ok {
		return l
	}
	return nil
}
