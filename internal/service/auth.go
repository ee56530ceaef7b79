// Package service holds the authentication business logic.
//
// AuthService sits between the HTTP handlers and the OIDC/repository
// layers: it owns the callback flow (exchange the code, verify the ID
// token, find or create the local user, issue the session value) and
// nothing HTTP-shaped. Handlers set the cookies and redirects.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
	"github.com/splatr/splatr/internal/oidc"
	"github.com/splatr/splatr/internal/repository"
	"github.com/splatr/splatr/internal/session"
)

// Provider is the identity-provider surface the login flow needs.
// *oidc.Client satisfies it.
type Provider interface {
	AuthorizationURL() string
	Exchange(ctx context.Context, code string) (*oidc.Tokens, error)
	VerifyIDToken(idToken string) (*oidc.Claims, error)
}

// UserFinder looks up users through the internal users API.
// *api.Client satisfies it.
type UserFinder interface {
	FindUsersByExternalID(ctx context.Context, externalID, accessToken string) ([]model.User, error)
}

type AuthService struct {
	provider Provider
	finder   UserFinder
	users    repository.UserRepository
	sessions *session.Service
	logger   *slog.Logger
}

func NewAuthService(
	provider Provider,
	finder UserFinder,
	users repository.UserRepository,
	sessions *session.Service,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider: provider,
		finder:   finder,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// LoginResult bundles what the callback handler needs to finish the flow:
// the resolved user, the signed session value for the cookie, and where to
// send the browser next.
type LoginResult struct {
	User         *model.User
	SessionValue string
	RedirectTo   string
}

// AuthorizationURL is the redirect target for /login.
func (s *AuthService) AuthorizationURL() string {
	return s.provider.AuthorizationURL()
}

// LoginWithCode completes the callback: exchanges the authorization code,
// verifies the ID token, resolves the subject to a local user (creating
// one on first login), and issues a session value. Users who already have
// an artist land on /console; everyone else lands on /.
func (s *AuthService) LoginWithCode(ctx context.Context, code string) (*LoginResult, error) {
	tokens, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	claims, err := s.provider.VerifyIDToken(tokens.IDToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	found, err := s.finder.FindUsersByExternalID(ctx, claims.Subject, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up user (externalId=%s): %w", claims.Subject, err)
	}

	var user *model.User
	if len(found) > 0 {
		user = &found[0]
	} else {
		user, err = s.registerUser(ctx, claims)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID.Hex()),
		slog.String("externalId", user.ExternalID),
	)

	value, err := s.sessions.Issue(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing session for user %s: %w", user.ID.Hex(), err)
	}

	redirect := "/"
	if user.Artist != nil {
		redirect = "/console"
	}

	return &LoginResult{
		User:         user,
		SessionValue: value,
		RedirectTo:   redirect,
	}, nil
}

// registerUser creates the record for a first login. Two concurrent first
// logins for the same subject both pass the not-found check; the storage
// layer's unique index rejects the second insert, and we recover by
// re-fetching the record the winner created.
func (s *AuthService) registerUser(ctx context.Context, claims *oidc.Claims) (*model.User, error) {
	user := &model.User{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Profile:    claims.Picture,
	}

	err := s.users.CreateUser(ctx, user)
	if err == nil {
		s.logger.Info("user created", slog.String("externalId", user.ExternalID))
		return user, nil
	}

	if errors.Is(err, apperror.ErrConflict) {
		existing, ferr := s.users.FindUsersByExternalID(ctx, claims.Subject)
		if ferr != nil {
			return nil, fmt.Errorf("service/auth: re-fetching user after conflict (externalId=%s): %w", claims.Subject, ferr)
		}
		if len(existing) > 0 {
			return &existing[0], nil
		}
		// Lost the insert race but the winner's record is gone too.
		return nil, fmt.Errorf("service/auth: user vanished after conflict (externalId=%s)", claims.Subject)
	}

	return nil, fmt.Errorf("service/auth: creating user (externalId=%s): %w", claims.Subject, err)
}
