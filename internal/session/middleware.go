package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
	"github.com/splatr/splatr/internal/repository"
)

// consolePrefix is the protected route prefix.
const consolePrefix = "/console"

// Middleware runs on every request before route handlers. It records the
// request path, resolves the session cookie into a user, and gates the
// console prefix: an unresolved user there is answered with a redirect to
// /login?ref=<path> and the chain stops.
//
// A missing cookie and a cookie that fails verification both collapse to
// "no session" — the difference is deliberately not observable.
func Middleware(sessions *Service, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithPath(r.Context(), r.URL.Path)

			user := resolveUser(ctx, r, sessions, users, logger)

			if strings.HasPrefix(r.URL.Path, consolePrefix) && user == nil {
				http.Redirect(w, r, "/login?ref="+r.URL.Path, http.StatusFound)
				return
			}

			if user != nil {
				ctx = ContextWithUser(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(ctx context.Context, r *http.Request, sessions *Service, users repository.UserRepository, logger *slog.Logger) *model.User {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	userID, err := sessions.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		// A deleted user is a dead session, not a server fault.
		if !errors.Is(err, apperror.ErrNotFound) {
			logger.Error("session: resolving user",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return user
}
