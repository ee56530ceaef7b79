// Package oidc wraps the interaction with one OpenID Connect identity
// provider: endpoint discovery, authorization-URL construction, the
// authorization-code exchange, and ID-token verification.
//
// The provider signs ID tokens with HS256 using the client secret as the
// key, so verification needs no JWKS fetch — just the shared secret. The
// code exchange itself is delegated to golang.org/x/oauth2.
package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Config holds the provider client settings.
type Config struct {
	Audience     string
	ClientID     string
	ClientSecret string
	Issuer       string
	RedirectURI  string
}

// Endpoints are the provider URLs extracted from the discovery document.
type Endpoints struct {
	Authorization string
	Token         string
	UserInfo      string
}

// Client talks to a single identity provider. Construct it with Discover;
// it is safe for concurrent use after that.
type Client struct {
	cfg       Config
	endpoints Endpoints
	oauth     *oauth2.Config
}

// scopes requested during authorization.
var scopes = []string{"offline_access", "openid", "profile", "picture", "email"}

type discoveryDoc struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserInfoEndpoint      string `json:"userinfo_endpoint"`
}

// Discover fetches the provider's metadata document and builds a Client.
// All three of the authorization, token, and userinfo endpoints must be
// present; a provider without them is unusable and the caller is expected
// to treat this as a startup failure.
func Discover(ctx context.Context, cfg Config) (*Client, error) {
	wellKnown := strings.TrimSuffix(cfg.Issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("oidc: building discovery request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oidc: fetching provider metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("oidc: discovery returned %d: %s", resp.StatusCode, string(body))
	}

	var doc discoveryDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("oidc: decoding provider metadata: %w", err)
	}

	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.UserInfoEndpoint == "" {
		return nil, errors.New("oidc: provider metadata is missing required endpoints")
	}

	return &Client{
		cfg: cfg,
		endpoints: Endpoints{
			Authorization: doc.AuthorizationEndpoint,
			Token:         doc.TokenEndpoint,
			UserInfo:      doc.UserInfoEndpoint,
		},
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   doc.AuthorizationEndpoint,
				TokenURL:  doc.TokenEndpoint,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}, nil
}

// Endpoints returns the discovered provider endpoints.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// AuthorizationURL builds the redirect target for /login: the provider's
// authorization endpoint with audience, client_id, redirect_uri,
// response_type=code, and the requested scopes.
func (c *Client) AuthorizationURL() string {
	return c.oauth.AuthCodeURL("", oauth2.SetAuthURLParam("audience", c.cfg.Audience))
}

// Tokens is the part of the token-endpoint response the login flow needs.
type Tokens struct {
	AccessToken string
	IDToken     string
}

// Exchange trades an authorization code for tokens. A non-success response
// from the provider surfaces as an *UpstreamTokenError carrying the
// provider's response body. No retries.
func (c *Client) Exchange(ctx context.Context, code string) (*Tokens, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, &UpstreamTokenError{
				Status: rerr.Response.StatusCode,
				Body:   string(rerr.Body),
			}
		}
		return nil, fmt.Errorf("oidc: exchanging authorization code: %w", err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return nil, errors.New("oidc: token response has no id_token")
	}

	return &Tokens{AccessToken: tok.AccessToken, IDToken: idToken}, nil
}
