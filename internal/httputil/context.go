package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// WithUser adds the authenticated user's id and email to the request context.
func WithUser(r *http.Request, userID, email string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, emailKey, email)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetEmail retrieves the authenticated email from context, returns empty string if not found
func GetEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}
