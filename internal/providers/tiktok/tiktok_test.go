package tiktok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, tokenHandler, userHandler http.HandlerFunc) *Client {
	t.Helper()
	tokenSrv := httptest.NewServer(tokenHandler)
	t.Cleanup(tokenSrv.Close)
	userSrv := httptest.NewServer(userHandler)
	t.Cleanup(userSrv.Close)

	c := NewClient("key-1", "secret-1", "https://app.example/callback")
	c.TokenURL = tokenSrv.URL
	c.UserInfoURL = userSrv.URL
	return c
}

func TestResolveHappyPath(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "key-1", r.PostForm.Get("client_key"))
			assert.Equal(t, "code-1", r.PostForm.Get("code"))
			assert.Equal(t, "verifier-1", r.PostForm.Get("code_verifier"))
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			w.Write([]byte(`{"access_token":"at-1","open_id":"open-1","expires_in":86400,"token_type":"Bearer"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"data":{"user":{"open_id":"open-1","display_name":"TT User"}},"error":{"code":"ok"}}`))
		},
	)

	identity, err := c.Resolve(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)
	assert.Equal(t, "open-1@tiktok.users", identity.Email)
	assert.Equal(t, "TT User", identity.DisplayName)
	assert.Equal(t, "open-1", identity.ProviderID)
}

func TestResolveExchangeError(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Authorization code expired."}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			t.Error("user info must not be called when the exchange fails")
		},
	)

	_, err := c.Resolve(context.Background(), "stale", "verifier")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestResolveSurvivesProfileFailure(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"access_token":"at-1","open_id":"open-2"}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
		},
	)

	// The exchange already proved the identity; a failed profile fetch only
	// costs the display name.
	identity, err := c.Resolve(context.Background(), "code", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "open-2@tiktok.users", identity.Email)
	assert.Empty(t, identity.DisplayName)
}

func TestResolveNoOpenID(t *testing.T) {
	c := newTestClient(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"access_token":"at-1"}`))
		},
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"data":{"user":{}},"error":{"code":"ok"}}`))
		},
	)

	_, err := c.Resolve(context.Background(), "code", "verifier")
	assert.Error(t, err)
}
