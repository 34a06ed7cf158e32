package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	isAdminKey   contextKey = "isAdmin"
	requestIDKey contextKey = "requestID"
	stateKey     contextKey = "requestState"
)

// requestState is shared by reference between outer middleware (access log)
// and the handlers below it, which only see derived contexts.
type requestState struct {
	userID string
}

// UserIDFrom retrieves the authenticated user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// IsAdminFrom reports whether the authenticated caller carries the admin claim.
func IsAdminFrom(r *http.Request) bool {
	v, _ := r.Context().Value(isAdminKey).(bool)
	return v
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

// RequestIDFromContext retrieves the request ID from ctx.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUser returns a new context with the user ID and admin claim.
func ContextWithUser(ctx context.Context, userID string, isAdmin bool) context.Context {
	if st, ok := ctx.Value(stateKey).(*requestState); ok {
		st.userID = userID
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, isAdminKey, isAdmin)
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func contextWithState(ctx context.Context, st *requestState) context.Context {
	return context.WithValue(ctx, stateKey, st)
}
