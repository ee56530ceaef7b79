package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/splatr/splatr/internal/service"
	"github.com/splatr/splatr/internal/session"
)

// LoginFlow is the slice of the auth service the handler needs.
type LoginFlow interface {
	AuthorizationURL() string
	LoginWithCode(ctx context.Context, code string) (*service.LoginResult, error)
}

// AuthHandler drives the login, callback, and logout routes. It owns the
// HTTP side of the flow (cookies, redirects, status codes); the business
// logic lives behind LoginFlow.
type AuthHandler struct {
	flow   LoginFlow
	logger *slog.Logger
}

func NewAuthHandler(flow LoginFlow, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{flow: flow, logger: logger}
}

// HandleLogin redirects the browser to the identity provider's
// authorization endpoint.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.flow.AuthorizationURL(), http.StatusFound)
}

// HandleCallback completes the login.
//
// HTTP: GET /oidc-callback?code=xxx
//
// The code is exchanged and verified, the subject resolved to a local
// user, and a fresh session cookie issued — any pre-existing one is
// cleared first. Users with an artist land on /console, the rest on /.
// A failure anywhere in the flow fails the request; there are no retries.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	result, err := h.flow.LoginWithCode(r.Context(), code)
	if err != nil {
		h.logger.Error("oidc callback failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	session.ClearCookie(w)
	session.SetCookie(w, result.SessionValue)

	http.Redirect(w, r, result.RedirectTo, http.StatusFound)
}

// HandleLogout clears the session cookie and sends the browser home.
// Idempotent: logging out with no active session is not an error.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
