// Package facebook resolves a Facebook access token into an identity through
// a server-to-server Graph API profile call.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/visitgate/visitgate/internal/providers"
)

// placeholderDomain keys accounts whose profile exposes no email address.
const placeholderDomain = "facebook.users"

type Client struct {
	graphURL string
	http     *http.Client
}

func NewClient(graphURL string) *Client {
	if graphURL == "" {
		graphURL = "https://graph.facebook.com"
	}
	return &Client{
		graphURL: graphURL,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Resolve fetches the token holder's profile. A successful Graph call is
// proof of identity; if the profile carries no email a placeholder address
// is synthesized from the numeric profile id.
func (c *Client) Resolve(ctx context.Context, accessToken string) (*providers.Identity, error) {
	q := url.Values{}
	q.Set("fields", "id,name,email")
	q.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+"/me?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("unexpected profile response: %w", err)
	}

	if profile.Error != nil {
		return nil, fmt.Errorf("graph api error %d: %s", profile.Error.Code, profile.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph api status %d", resp.StatusCode)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("profile response missing id")
	}

	email := profile.Email
	if email == "" {
		email = fmt.Sprintf("%s@%s", profile.ID, placeholderDomain)
	}

	return &providers.Identity{
		Email:         email,
		DisplayName:   profile.Name,
		ProviderID:    profile.ID,
		EmailVerified: true,
	}, nil
}
