package oidc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken marks an ID token that failed signature or claim checks.
// Callers match it with errors.Is.
var ErrInvalidToken = errors.New("oidc: invalid ID token")

// UpstreamTokenError is a non-success response from the token endpoint.
// It carries the provider's raw response body for server-side logging.
type UpstreamTokenError struct {
	Status int
	Body   string
}

func (e *UpstreamTokenError) Error() string {
	return fmt.Sprintf("oidc: token endpoint returned %d: %s", e.Status, e.Body)
}

// Claims are the verified identity claims the login flow consumes.
type Claims struct {
	Subject string
	Email   string
	Picture string
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// VerifyIDToken checks the token's HS256 signature against the client
// secret and validates the issuer and audience claims. The issuer claim
// must be the configured issuer with a trailing slash — that is how the
// provider emits it. Returns ErrInvalidToken on any mismatch.
func (c *Client) VerifyIDToken(idToken string) (*Claims, error) {
	var claims idTokenClaims

	_, err := jwt.ParseWithClaims(
		idToken,
		&claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(c.cfg.ClientSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(strings.TrimSuffix(c.cfg.Issuer, "/")+"/"),
		jwt.WithAudience(c.cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Picture: claims.Picture,
	}, nil
}
