// internal/registry/service.go
package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"jivelink/internal/oauth"
	"jivelink/internal/signature"
	"jivelink/pkg/communities"
	"jivelink/pkg/config"
	"jivelink/pkg/errs"
)

// Service is the community registry facade: persistence with validation,
// registration/unregistration with signature checks and token exchange, and
// authenticated request proxying.
type Service struct {
	store      communities.Store
	validator  *signature.Validator
	tokens     *oauth.Client
	refresher  *oauth.RefreshHandler
	httpClient *http.Client
	log        *zap.SugaredLogger

	defaultClientID     string
	defaultClientSecret string

	obsMu     sync.RWMutex
	observers []Observer
}

// New wires the registry. All collaborators are injected; there are no
// package-level singletons.
func New(cfg config.Config, store communities.Store, validator *signature.Validator, tokens *oauth.Client, refresher *oauth.RefreshHandler, httpClient *http.Client, log *zap.SugaredLogger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Service{
		store:               store,
		validator:           validator,
		tokens:              tokens,
		refresher:           refresher,
		httpClient:          httpClient,
		log:                 log,
		defaultClientID:     cfg.DefaultClientID,
		defaultClientSecret: cfg.DefaultClientSecret,
	}
}

// RegistrationPayload is the inbound packet for register and unregister
// requests. Field names follow the platform's wire format.
type RegistrationPayload struct {
	TenantID         string `json:"tenantId,omitempty"`
	JiveURL          string `json:"jiveUrl,omitempty"`
	JiveCommunity    string `json:"jiveCommunity,omitempty"`
	ClientID         string `json:"clientId,omitempty"`
	ClientSecret     string `json:"clientSecret,omitempty"`
	Code             string `json:"code,omitempty"`
	Scope            string `json:"scope,omitempty"`
	ExpiresIn        int    `json:"expires_in,omitempty"`
	JiveSignature    string `json:"jiveSignature,omitempty"`
	JiveSignatureURL string `json:"jiveSignatureURL,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
}

// asMap renders the payload the way it arrived on the wire, for signature
// canonicalization. Empty fields are absent, matching the original packet.
func (p RegistrationPayload) asMap() map[string]any {
	b, _ := json.Marshal(p)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// Save validates and persists a record. TenantID is required; JiveCommunity
// is derived from JiveURL when absent.
func (s *Service) Save(ctx context.Context, c communities.Community) (communities.Community, error) {
	if c.TenantID == "" {
		return communities.Community{}, errs.Validation("tenantId is required")
	}
	if c.JiveCommunity == "" {
		c.JiveCommunity = communities.ParseJiveCommunity(c.JiveURL)
	}
	return s.store.Save(ctx, c)
}

// Find returns all records matching the filter.
func (s *Service) Find(ctx context.Context, f communities.Filter) ([]communities.Community, error) {
	return s.store.Find(ctx, f)
}

// FindByTenantID returns the record for a tenant, or false when absent.
func (s *Service) FindByTenantID(ctx context.Context, tenantID string) (communities.Community, bool, error) {
	return communities.First(ctx, s.store, communities.Filter{TenantID: tenantID})
}

// FindByCommunity returns the first record with the given community name.
func (s *Service) FindByCommunity(ctx context.Context, name string) (communities.Community, bool, error) {
	return communities.First(ctx, s.store, communities.Filter{JiveCommunity: name})
}

// FindByJiveURL returns the first record with the given instance URL.
func (s *Service) FindByJiveURL(ctx context.Context, jiveURL string) (communities.Community, bool, error) {
	return communities.First(ctx, s.store, communities.Filter{JiveURL: jiveURL})
}

// Register validates the payload signature, exchanges the authorization
// code when one is present, merges the result into any existing record and
// persists it. Observers are notified on both outcomes.
func (s *Service) Register(ctx context.Context, payload RegistrationPayload) (communities.Community, error) {
	rec := communities.Community{
		TenantID:      payload.TenantID,
		JiveURL:       payload.JiveURL,
		JiveCommunity: payload.JiveCommunity,
		ClientID:      payload.ClientID,
		ClientSecret:  payload.ClientSecret,
	}

	// An empty tenant id would make the lookup below match an arbitrary
	// stored record; reject before touching the store.
	if payload.TenantID == "" {
		err := errs.Validation("tenantId is required")
		s.notify(EventRegisteredFailed, rec, err)
		return communities.Community{}, err
	}

	if err := s.validator.Validate(ctx, payload.asMap()); err != nil {
		s.notify(EventRegisteredFailed, rec, err)
		return communities.Community{}, err
	}

	existing, found, err := s.FindByTenantID(ctx, payload.TenantID)
	if err != nil {
		s.notify(EventRegisteredFailed, rec, err)
		return communities.Community{}, err
	}
	if found {
		rec = mergeRecord(existing, rec)
	}
	rec.OAuth = rec.OAuth.Merge(&communities.OAuth{
		Code:          payload.Code,
		Scope:         payload.Scope,
		ExpiresIn:     payload.ExpiresIn,
		JiveSignature: payload.JiveSignature,
	})

	if payload.Code != "" {
		clientID, clientSecret := s.credentials(rec)
		tok, err := s.tokens.ExchangeCode(ctx, rec.JiveURL, clientID, clientSecret, payload.Code)
		if err != nil {
			s.notify(EventRegisteredFailed, rec, err)
			return communities.Community{}, err
		}
		rec.OAuth = rec.OAuth.Merge(&communities.OAuth{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresIn:    tok.ExpiresIn,
			Scope:        tok.Scope,
		})
	}

	rec.Version = communities.RecordVersion
	saved, err := s.Save(ctx, rec)
	if err != nil {
		s.notify(EventRegisteredFailed, rec, err)
		return communities.Community{}, err
	}
	s.log.Infow("community registered", "tenant", saved.TenantID, "community", saved.JiveCommunity)
	s.notify(EventRegisteredSuccess, saved, nil)
	return saved, nil
}

// Unregister validates the packet signature and removes the record.
func (s *Service) Unregister(ctx context.Context, packet RegistrationPayload) error {
	probe := communities.Community{TenantID: packet.TenantID}

	if packet.TenantID == "" {
		err := errs.Validation("tenantId is required")
		s.notify(EventUnregisterFailed, probe, err)
		return err
	}

	if err := s.validator.Validate(ctx, packet.asMap()); err != nil {
		s.notify(EventUnregisterFailed, probe, err)
		return err
	}

	rec, found, err := s.FindByTenantID(ctx, packet.TenantID)
	if err != nil {
		s.notify(EventUnregisterFailed, probe, err)
		return err
	}
	if !found {
		err := errs.NotFound("community " + packet.TenantID)
		s.notify(EventUnregisterFailed, probe, err)
		return err
	}

	removed, err := s.store.Remove(ctx, packet.TenantID)
	if err != nil {
		s.notify(EventUnregisterFailed, rec, err)
		return err
	}
	if !removed {
		// lost a race with a concurrent unregister
		err := errs.NotFound("community " + packet.TenantID)
		s.notify(EventUnregisterFailed, rec, err)
		return err
	}
	s.log.Infow("community unregistered", "tenant", rec.TenantID)
	s.notify(EventUnregisterSuccess, rec, nil)
	return nil
}

// mergeRecord overlays non-empty inbound fields on the stored record. The
// oauth block is handled separately so it is never wholesale replaced.
func mergeRecord(existing, inbound communities.Community) communities.Community {
	out := existing
	if inbound.JiveURL != "" {
		out.JiveURL = inbound.JiveURL
	}
	if inbound.JiveCommunity != "" {
		out.JiveCommunity = inbound.JiveCommunity
	}
	if inbound.ClientID != "" {
		out.ClientID = inbound.ClientID
	}
	if inbound.ClientSecret != "" {
		out.ClientSecret = inbound.ClientSecret
	}
	return out
}

func (s *Service) credentials(rec communities.Community) (string, string) {
	id, secret := rec.ClientID, rec.ClientSecret
	if id == "" {
		id = s.defaultClientID
	}
	if secret == "" {
		secret = s.defaultClientSecret
	}
	return id, secret
}
