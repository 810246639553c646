// internal/oauth/refresh.go
package oauth

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"jivelink/pkg/communities"
	"jivelink/pkg/errs"
)

// Operation is the wrapped request attempt. It is given the access token to
// send and must return the upstream response.
type Operation func(ctx context.Context, accessToken string) (*http.Response, error)

// PersistFunc stores a freshly exchanged token pair. The default merges the
// pair into the record's oauth block and saves it.
type PersistFunc func(ctx context.Context, rec communities.Community, tok *TokenResponse) (communities.Community, error)

// AuthFailure reports whether the upstream rejected the access token.
func AuthFailure(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusUnauthorized
}

// RefreshHandler wraps an operation so an expired-token failure triggers one
// refresh exchange followed by exactly one retry. At most one refresh is in
// flight per tenant; concurrent callers wait and reuse the new token.
type RefreshHandler struct {
	client  *Client
	store   communities.Store
	log     *zap.SugaredLogger
	Persist PersistFunc

	defaultClientID     string
	defaultClientSecret string

	mu      sync.Mutex
	tenants map[string]*sync.Mutex
}

func NewRefreshHandler(client *Client, store communities.Store, defaultClientID, defaultClientSecret string, log *zap.SugaredLogger) *RefreshHandler {
	return &RefreshHandler{
		client:              client,
		store:               store,
		log:                 log,
		defaultClientID:     defaultClientID,
		defaultClientSecret: defaultClientSecret,
		tenants:             map[string]*sync.Mutex{},
	}
}

// Do resolves the current persisted record, attempts op with its access
// token (or initialToken when supplied by the caller), and on an auth
// failure refreshes and retries once. A second failure is terminal and the
// response surfaces as-is; a refresh failure is terminal immediately.
func (h *RefreshHandler) Do(ctx context.Context, tenantID, initialToken string, op Operation) (*http.Response, error) {
	rec, ok, err := communities.First(ctx, h.store, communities.Filter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("community " + tenantID)
	}

	token := initialToken
	if token == "" && rec.OAuth != nil {
		token = rec.OAuth.AccessToken
	}

	resp, err := op(ctx, token)
	if err != nil {
		return nil, errs.Transport("request failed", err)
	}
	if !AuthFailure(resp) {
		return resp, nil
	}
	resp.Body.Close()

	h.log.Debugw("access token rejected, refreshing", "tenant", tenantID)
	fresh, err := h.refresh(ctx, tenantID, token)
	if err != nil {
		return nil, err
	}

	resp, err = op(ctx, fresh)
	if err != nil {
		return nil, errs.Transport("request failed after refresh", err)
	}
	return resp, nil
}

// refresh performs the refresh-token exchange under the tenant's lock. When
// a concurrent caller already refreshed while we waited, the newer persisted
// token is returned without another exchange.
func (h *RefreshHandler) refresh(ctx context.Context, tenantID, staleToken string) (string, error) {
	lock := h.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	rec, ok, err := communities.First(ctx, h.store, communities.Filter{TenantID: tenantID})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.NotFound("community " + tenantID)
	}
	if rec.OAuth != nil && rec.OAuth.AccessToken != "" && rec.OAuth.AccessToken != staleToken {
		return rec.OAuth.AccessToken, nil
	}
	if rec.OAuth == nil || rec.OAuth.RefreshToken == "" {
		return "", errs.TokenExchange("no refresh token for tenant "+tenantID, nil)
	}

	clientID, clientSecret := h.credentials(rec)
	tok, err := h.client.Refresh(ctx, rec.JiveURL, clientID, clientSecret, rec.OAuth.RefreshToken)
	if err != nil {
		return "", err
	}

	persist := h.Persist
	if persist == nil {
		persist = h.defaultPersist
	}
	if _, err := persist(ctx, rec, tok); err != nil {
		return "", err
	}
	h.log.Infow("token refreshed", "tenant", tenantID)
	return tok.AccessToken, nil
}

func (h *RefreshHandler) defaultPersist(ctx context.Context, rec communities.Community, tok *TokenResponse) (communities.Community, error) {
	rec.OAuth = rec.OAuth.Merge(&communities.OAuth{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		Scope:        tok.Scope,
	})
	return h.store.Save(ctx, rec)
}

func (h *RefreshHandler) credentials(rec communities.Community) (string, string) {
	id, secret := rec.ClientID, rec.ClientSecret
	if id == "" {
		id = h.defaultClientID
	}
	if secret == "" {
		secret = h.defaultClientSecret
	}
	return id, secret
}

func (h *RefreshHandler) tenantLock(tenantID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.tenants[tenantID]; ok {
		return l
	}
	l := &sync.Mutex{}
	h.tenants[tenantID] = l
	return l
}
