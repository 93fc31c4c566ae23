// Package authprovider talks to the external sign-in provider that turns a
// one-time session id into the caller's profile.
package authprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/common"
)

// Profile is the identity the provider vouches for.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Client calls the provider's session-data endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient builds a Client for the session-data endpoint at url.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Profile exchanges sessionID for the caller's profile.
//
// A provider rejection (4xx) is common.ErrorUnauthorized; transport failures,
// 5xx answers and unreadable bodies are common.ErrUpstreamUnavailable. No
// retry is attempted.
func (c *Client) Profile(ctx context.Context, sessionID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set(common.ProviderSessionHeader, sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: auth provider: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: auth provider answered %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: auth provider rejected session (%d)", common.ErrorUnauthorized, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: auth provider body: %v", common.ErrUpstreamUnavailable, err)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" {
		return nil, fmt.Errorf("%w: auth provider returned no email", common.ErrUpstreamUnavailable)
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = p.Email
	}
	return &p, nil
}
