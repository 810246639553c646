// internal/oauth/client.go
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"jivelink/pkg/errs"
)

// TokenPath is the token endpoint path on every Jive instance.
const TokenPath = "/oauth2/token"

// TokenResponse maps the token endpoint response fields (RFC 6749).
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Client performs the wire-level authorization-code and refresh-token
// exchanges against a community's token endpoint.
type Client struct {
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(httpClient *http.Client, log *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, log: log}
}

// ExchangeCode swaps an authorization code for a token pair.
func (c *Client) ExchangeCode(ctx context.Context, jiveURL, clientID, clientSecret, code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("code", code)
	return c.requestToken(ctx, TokenURL(jiveURL), data)
}

// Refresh swaps a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, jiveURL, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("refresh_token", refreshToken)
	return c.requestToken(ctx, TokenURL(jiveURL), data)
}

// TokenURL joins the instance base URL with the token endpoint path.
func TokenURL(jiveURL string) string {
	return strings.TrimRight(jiveURL, "/") + TokenPath
}

func (c *Client) requestToken(ctx context.Context, tokenURL string, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errs.TokenExchange("building token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Transport("token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			return nil, errs.TokenExchange(fmt.Sprintf("%s - %s", errResp.Error, errResp.Description), nil)
		}
		return nil, errs.TokenExchange(fmt.Sprintf("token endpoint returned %d", resp.StatusCode), nil)
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, errs.TokenExchange("decoding token response", err)
	}
	if tok.AccessToken == "" {
		return nil, errs.TokenExchange("token response missing access_token", nil)
	}
	return &tok, nil
}
