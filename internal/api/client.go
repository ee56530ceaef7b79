// Package api is the HTTP client for the server's own internal JSON API.
//
// The login flow resolves existing users through this client — a real HTTP
// round trip to API_BASE_URI, authorized with the provider access token —
// rather than querying storage directly. Keeping the lookup behind the API
// keeps the users endpoint the single read path for user queries.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/splatr/splatr/internal/apperror"
	"github.com/splatr/splatr/internal/model"
)

type Client struct {
	baseURI string
	http    *http.Client
}

func NewClient(baseURI string) *Client {
	return &Client{
		baseURI: strings.TrimSuffix(baseURI, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type usersEnvelope struct {
	Data []model.User `json:"data"`
}

// FindUsersByExternalID queries GET {base}/users?externalId=<id>, passing
// the provider access token as a bearer credential. The response's data
// array holds 0 or 1 users; callers must not assume exactly 1.
func (c *Client) FindUsersByExternalID(ctx context.Context, externalID, accessToken string) ([]model.User, error) {
	reqURL := c.baseURI + "/users?externalId=" + url.QueryEscape(externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("api: building users request: %w", err)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: querying users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperror.Upstream("users api", fmt.Sprintf("status %d: %s", resp.StatusCode, string(body)))
	}

	var env usersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("api: decoding users response: %w", err)
	}
	return env.Data, nil
}
