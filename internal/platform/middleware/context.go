package middleware

import "context"

// Context keys for request-scoped values set by middleware and consumed by
// handlers and services.
type (
	contextKeyReviewer  struct{}
	contextKeySessionID struct{}
	contextKeyRequestID struct{}
	contextKeyUserAgent struct{}
	contextKeyClientIP  struct{}
)

var (
	ContextKeyReviewer  = contextKeyReviewer{}
	ContextKeySessionID = contextKeySessionID{}
	ContextKeyRequestID = contextKeyRequestID{}
	ContextKeyUserAgent = contextKeyUserAgent{}
	ContextKeyClientIP  = contextKeyClientIP{}
)

// GetReviewer retrieves the authenticated reviewer ID from the context.
func GetReviewer(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyReviewer).(string)
	return v
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeySessionID).(string)
	return v
}

// GetRequestID retrieves the request correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyRequestID).(string)
	return v
}

// GetUserAgent retrieves the raw User-Agent header captured at ingress.
func GetUserAgent(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyUserAgent).(string)
	return v
}

// GetClientIP retrieves the remote address captured at ingress.
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(ContextKeyClientIP).(string)
	return v
}
