package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jivelink/pkg/errs"
)

func TestTokenURL(t *testing.T) {
	assert.Equal(t, "https://x.example.com/oauth2/token", TokenURL("https://x.example.com"))
	assert.Equal(t, "https://x.example.com/oauth2/token", TokenURL("https://x.example.com/"))
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresIn:    3600,
			Scope:        "uri:/api",
		})
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop().Sugar())
	tok, err := c.ExchangeCode(context.Background(), srv.URL, "cid", "secret", "the-code")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "cid", gotForm.Get("client_id"))
	assert.Equal(t, "secret", gotForm.Get("client_secret"))
	assert.Equal(t, "the-code", gotForm.Get("code"))
	assert.Equal(t, "access-1", tok.AccessToken)
	assert.Equal(t, "refresh-1", tok.RefreshToken)
	assert.Equal(t, 3600, tok.ExpiresIn)
}

func TestRefresh(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2"})
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop().Sugar())
	tok, err := c.Refresh(context.Background(), srv.URL, "cid", "secret", "refresh-1")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "refresh-1", gotForm.Get("refresh_token"))
	assert.Equal(t, "access-2", tok.AccessToken)
}

func TestExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant", "error_description": "code expired"})
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop().Sugar())
	_, err := c.ExchangeCode(context.Background(), srv.URL, "cid", "secret", "stale")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTokenExchange))
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(nil, zap.NewNop().Sugar())
	_, err := c.ExchangeCode(context.Background(), srv.URL, "cid", "secret", "code")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTransport))
}

func TestExchangeMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
	}))
	defer srv.Close()

	c := NewClient(nil, zap.NewNop().Sugar())
	_, err := c.ExchangeCode(context.Background(), srv.URL, "cid", "secret", "code")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTokenExchange))
}
