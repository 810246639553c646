package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jivelink/internal/oauth"
	"jivelink/pkg/communities"
	"jivelink/pkg/config"
)

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"https://x.example.com", "/api/core/v3/people", "https://x.example.com/api/core/v3/people"},
		{"https://x.example.com/", "/api/core/v3/people", "https://x.example.com/api/core/v3/people"},
		{"https://x.example.com/", "api/core/v3/people", "https://x.example.com/api/core/v3/people"},
		{"https://x.example.com", "api/core/v3/people", "https://x.example.com/api/core/v3/people"},
		{"https://x.example.com/", "", "https://x.example.com/"},
	}
	for _, c := range cases {
		if got := joinURL(c.base, c.path); got != c.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", c.base, c.path, got, c.want)
		}
	}
}

func TestDoRequestUnauthenticated(t *testing.T) {
	var gotAuth []string
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header["Authorization"]
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	svc, _, _ := newService(t, config.Config{})
	resp, err := svc.DoRequest(context.Background(), communities.Community{
		TenantID: "tenant-1",
		JiveURL:  upstream.URL,
	}, RequestOptions{Path: "/api/core/v3/people"})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, gotAuth, "no Authorization header without oauth credentials")
	assert.Equal(t, "/api/core/v3/people", gotPath)
}

func TestDoRequestRefreshesOnce(t *testing.T) {
	var tokens []string
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(oauth.TokenResponse{AccessToken: "access-new", RefreshToken: "refresh-new"})
	})
	mux.HandleFunc("/api/core/v3/people", func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		tokens = append(tokens, token)
		if token != "Bearer access-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "ok")
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	svc, store, _ := newService(t, config.Config{})
	rec, err := store.Save(context.Background(), communities.Community{
		TenantID: "tenant-1",
		JiveURL:  upstream.URL,
		ClientID: "cid", ClientSecret: "secret",
		OAuth: &communities.OAuth{AccessToken: "access-old", RefreshToken: "refresh-old"},
	})
	require.NoError(t, err)

	resp, err := svc.DoRequest(context.Background(), rec, RequestOptions{Path: "/api/core/v3/people"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bearer access-old", "Bearer access-new"}, tokens, "one refresh, one retry")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestDoRequestExplicitURLWins(t *testing.T) {
	hit := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer upstream.Close()

	svc, _, _ := newService(t, config.Config{})
	resp, err := svc.DoRequest(context.Background(), communities.Community{
		TenantID: "tenant-1",
		JiveURL:  "https://unreachable.invalid",
	}, RequestOptions{URL: upstream.URL + "/direct"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, hit)
}

func TestDoRequestOverrideOAuthBlock(t *testing.T) {
	var got string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer upstream.Close()

	svc, store, _ := newService(t, config.Config{})
	rec, err := store.Save(context.Background(), communities.Community{
		TenantID: "tenant-1",
		JiveURL:  upstream.URL,
		OAuth:    &communities.OAuth{AccessToken: "access-stored", RefreshToken: "refresh-stored"},
	})
	require.NoError(t, err)

	resp, err := svc.DoRequest(context.Background(), rec, RequestOptions{
		Path:  "/api",
		OAuth: &communities.OAuth{AccessToken: "access-override"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer access-override", got)
}
