// internal/registry/request.go
package registry

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"jivelink/pkg/communities"
	"jivelink/pkg/errs"
)

// RequestOptions describe an outbound request to the remote platform.
// URL wins over Path; Path is joined onto the community's instance URL.
type RequestOptions struct {
	URL     string
	Path    string
	Method  string
	Headers map[string]string
	Body    []byte
	// OAuth overrides the record's token block for this request only.
	OAuth *communities.OAuth
}

// DoRequest issues an HTTP request against the community's instance. When
// no OAuth credentials exist anywhere the request goes out unauthenticated;
// otherwise it runs through the refresh handler, which re-resolves the
// persisted record before each attempt and substitutes the live token.
func (s *Service) DoRequest(ctx context.Context, community communities.Community, opts RequestOptions) (*http.Response, error) {
	target := opts.URL
	if target == "" {
		target = joinURL(community.JiveURL, opts.Path)
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	build := func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(opts.Body))
		if err != nil {
			return nil, err
		}
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	}

	block := opts.OAuth
	if block == nil {
		block = community.OAuth
	}
	if block.Empty() {
		// unauthenticated community: plain request, no Authorization header
		req, err := build("")
		if err != nil {
			return nil, errs.Transport("building request", err)
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, errs.Transport("request failed", err)
		}
		return resp, nil
	}

	initial := ""
	if opts.OAuth != nil {
		initial = opts.OAuth.AccessToken
	}
	return s.refresher.Do(ctx, community.TenantID, initial, func(ctx context.Context, token string) (*http.Response, error) {
		req, err := build(token)
		if err != nil {
			return nil, err
		}
		return s.httpClient.Do(req)
	})
}

// joinURL concatenates base and path with exactly one separating slash.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
