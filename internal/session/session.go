// Package session implements the signed session cookie and the middleware
// that resolves it into a request-scoped user.
//
// A session is not a stored entity. The cookie value is the user's storage
// identifier signed with the server's signing key; validity is proven
// solely by signature verification, and user existence is re-checked
// against storage on every protected request. There is no server-side
// session store and no expiry independent of the cookie itself.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie issued on a successful login.
const CookieName = "splatr_sid"

// Service signs and verifies session cookie values with the server-held
// signing key.
type Service struct {
	secret []byte
}

func NewService(signingKey string) (*Service, error) {
	if signingKey == "" {
		return nil, errors.New("session: signing key must not be empty")
	}
	return &Service{secret: []byte(signingKey)}, nil
}

// Issue signs a new session value carrying the given user identifier.
// The token carries no expiry claim: the session lives as long as the
// cookie does, and every protected request re-checks the user in storage.
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("session: user ID must not be empty")
	}

	c := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session: signing cookie value: %w", err)
	}
	return signed, nil
}

// Verify checks a cookie value's signature and returns the user identifier
// it carries.
func (s *Service) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(
		value,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("session: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return "", fmt.Errorf("session: invalid cookie value: %w", err)
	}

	if claims.Subject == "" {
		return "", errors.New("session: cookie value has no subject")
	}
	return claims.Subject, nil
}

// SetCookie attaches a freshly issued session cookie to the response.
func SetCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie tells the browser to drop the session cookie. Safe to call
// with no session present.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
