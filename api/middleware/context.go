package middleware

import "context"

type contextKey string

const ctxBuilderSession contextKey = "builder_session"

// BuilderSessionFromContext returns the builder session id, or "" for one-off requests.
func BuilderSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxBuilderSession).(string); ok {
		return v
	}
	return ""
}

// WithBuilderSession injects the builder session id into the context.
func WithBuilderSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBuilderSession, sessionID)
}
