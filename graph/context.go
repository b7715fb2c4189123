package graph

import "context"

type contextKey int

const (
	viewerKey contextKey = iota
	tokenKey
)

// WithViewer stores the authenticated user id on the request context.
// A zero id means the request is anonymous.
func WithViewer(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, viewerKey, userID)
}

// ViewerFrom returns the authenticated user id, or 0 for anonymous requests.
func ViewerFrom(ctx context.Context) uint {
	if v, ok := ctx.Value(viewerKey).(uint); ok {
		return v
	}
	return 0
}

// WithToken stores the raw bearer token so logout can revoke it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom returns the request's bearer token, or "" for anonymous requests.
func TokenFrom(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey).(string); ok {
		return v
	}
	return ""
}
