package session

import (
	"context"

	"github.com/splatr/splatr/internal/model"
)

// contextKey is an unexported type for this package's context keys, so no
// other package can read or shadow the values.
type contextKey string

const (
	userKey contextKey = "user"
	pathKey contextKey = "path"
)

// ContextWithUser attaches a resolved user to the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ContextWithPath records the request path in the context.
func ContextWithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey, path)
}

// UserFromContext returns the request's resolved user, if a valid session
// cookie mapped to an existing record.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// PathFromContext returns the request path recorded by the middleware.
func PathFromContext(ctx context.Context) string {
	p, _ := ctx.Value(pathKey).(string)
	return p
}
