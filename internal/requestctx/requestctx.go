package requestctx

import (
	"context"
	"time"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	sessionKey   ctxKey = "session_id"
	startedKey   ctxKey = "started_at"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

func GetSessionID(ctx context.Context) string {
	if value, ok := ctx.Value(sessionKey).(string); ok {
		return value
	}
	return ""
}

func WithStartedAt(ctx context.Context, startedAt time.Time) context.Context {
	return context.WithValue(ctx, startedKey, startedAt)
}

// GetStartedAt returns when the request entered the server, or the zero time.
func GetStartedAt(ctx context.Context) time.Time {
	if value, ok := ctx.Value(startedKey).(time.Time); ok {
		return value
	}
	return time.Time{}
}
