package communities

import (
	"net/url"
	"strings"
)

// RecordVersion tags every record written by a registration.
const RecordVersion = "community-v1"

// OAuth is the token block persisted with a community. A community without
// one is valid; requests for it go out unauthenticated.
type OAuth struct {
	AccessToken   string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresIn     int    `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	Scope         string `json:"scope,omitempty" yaml:"scope,omitempty"`
	Code          string `json:"code,omitempty" yaml:"code,omitempty"`
	JiveSignature string `json:"jiveSignature,omitempty" yaml:"jiveSignature,omitempty"`
}

// Empty reports whether the block carries no usable credentials.
func (o *OAuth) Empty() bool {
	return o == nil || (o.AccessToken == "" && o.RefreshToken == "")
}

// Merge overlays non-empty fields of other onto a copy of o. The stored
// block is never wholesale replaced by an emptier one.
func (o *OAuth) Merge(other *OAuth) *OAuth {
	if o == nil {
		if other == nil {
			return nil
		}
		cp := *other
		return &cp
	}
	out := *o
	if other == nil {
		return &out
	}
	if other.AccessToken != "" {
		out.AccessToken = other.AccessToken
	}
	if other.RefreshToken != "" {
		out.RefreshToken = other.RefreshToken
	}
	if other.ExpiresIn != 0 {
		out.ExpiresIn = other.ExpiresIn
	}
	if other.Scope != "" {
		out.Scope = other.Scope
	}
	if other.Code != "" {
		out.Code = other.Code
	}
	if other.JiveSignature != "" {
		out.JiveSignature = other.JiveSignature
	}
	return &out
}

// Community is a registered remote Jive instance, keyed by tenant id.
type Community struct {
	TenantID      string `json:"tenantId" yaml:"tenantId"`
	JiveURL       string `json:"jiveUrl" yaml:"jiveUrl"`
	JiveCommunity string `json:"jiveCommunity" yaml:"jiveCommunity"`
	ClientID      string `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	ClientSecret  string `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	OAuth         *OAuth `json:"oauth,omitempty" yaml:"oauth,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Sanitized returns a copy safe to serve over HTTP: client secret and token
// material blanked.
func (c Community) Sanitized() Community {
	c.ClientSecret = ""
	if c.OAuth != nil {
		o := *c.OAuth
		o.AccessToken = ""
		o.RefreshToken = ""
		o.Code = ""
		o.JiveSignature = ""
		c.OAuth = &o
	}
	return c
}

// ParseJiveCommunity derives the community name from an instance URL: the
// URL host with a leading "www." stripped.
func ParseJiveCommunity(jiveURL string) string {
	u, err := url.Parse(jiveURL)
	if err != nil {
		return ""
	}
	host := u.Host
	if host == "" {
		// bare host without scheme
		host = strings.SplitN(jiveURL, "/", 2)[0]
	}
	return strings.TrimPrefix(host, "www.")
}

// Filter is a partial-field match over stored communities. Zero-value
// fields are ignored.
type Filter struct {
	TenantID      string
	JiveURL       string
	JiveCommunity string
	ClientID      string
}

// Matches reports whether every set filter field equals the record's.
func (f Filter) Matches(c Community) bool {
	if f.TenantID != "" && f.TenantID != c.TenantID {
		return false
	}
	if f.JiveURL != "" && f.JiveURL != c.JiveURL {
		return false
	}
	if f.JiveCommunity != "" && f.JiveCommunity != c.JiveCommunity {
		return false
	}
	if f.ClientID != "" && f.ClientID != c.ClientID {
		return false
	}
	return true
}
