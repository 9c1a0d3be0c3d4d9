// Package tiktok exchanges an authorization code plus PKCE verifier for an
// access token and resolves the account behind it. TikTok never returns an
// email, so the resolved identity is always keyed by a placeholder address.
package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/visitgate/visitgate/internal/providers"
)

const (
	defaultTokenURL    = "https://open.tiktokapis.com/v2/oauth/token/"
	defaultUserInfoURL = "https://open.tiktokapis.com/v2/user/info/"

	placeholderDomain = "tiktok.users"
)

type Client struct {
	ClientKey    string
	ClientSecret string
	RedirectURL  string

	// Overridable for tests.
	TokenURL    string
	UserInfoURL string

	http *http.Client
}

func NewClient(clientKey, clientSecret, redirectURL string) *Client {
	return &Client{
		ClientKey:    clientKey,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		TokenURL:     defaultTokenURL,
		UserInfoURL:  defaultUserInfoURL,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	OpenID      string `json:"open_id"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Error       string `json:"error"`
	ErrorDesc   string `json:"error_description"`
}

type userInfoResponse struct {
	Data struct {
		User struct {
			OpenID      string `json:"open_id"`
			DisplayName string `json:"display_name"`
		} `json:"user"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) exchangeCode(ctx context.Context, authCode, codeVerifier string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("client_key", c.ClientKey)
	form.Set("client_secret", c.ClientSecret)
	form.Set("code", authCode)
	form.Set("code_verifier", codeVerifier)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("unexpected token response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("token endpoint error: %s %s", tr.Error, tr.ErrorDesc)
	}
	if resp.StatusCode != http.StatusOK || tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint status %d", resp.StatusCode)
	}
	return &tr, nil
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (*userInfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserInfoURL+"?fields=open_id,display_name", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request failed: %w", err)
	}
	defer resp.Body.Close()

	var ui userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&ui); err != nil {
		return nil, fmt.Errorf("unexpected user info response: %w", err)
	}
	if ui.Error.Code != "" && ui.Error.Code != "ok" {
		return nil, fmt.Errorf("user info error: %s %s", ui.Error.Code, ui.Error.Message)
	}
	return &ui, nil
}

// Resolve performs the full code+PKCE exchange and profile fetch. The token
// exchange itself proves the identity; the placeholder email is an internal
// key, not a reachable address.
func (c *Client) Resolve(ctx context.Context, authCode, codeVerifier string) (*providers.Identity, error) {
	tok, err := c.exchangeCode(ctx, authCode, codeVerifier)
	if err != nil {
		return nil, err
	}

	openID := tok.OpenID
	displayName := ""
	if profile, err := c.fetchProfile(ctx, tok.AccessToken); err == nil {
		if profile.Data.User.OpenID != "" {
			openID = profile.Data.User.OpenID
		}
		displayName = profile.Data.User.DisplayName
	}
	if openID == "" {
		return nil, fmt.Errorf("provider returned no open id")
	}

	return &providers.Identity{
		Email:         fmt.Sprintf("%s@%s", openID, placeholderDomain),
		DisplayName:   displayName,
		ProviderID:    openID,
		EmailVerified: true,
	}, nil
}
