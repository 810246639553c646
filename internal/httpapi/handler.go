// internal/httpapi/handler.go
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jivelink/internal/registry"
	"jivelink/pkg/communities"
	"jivelink/pkg/config"
	"jivelink/pkg/errs"
	"jivelink/pkg/middleware"
	"jivelink/pkg/openapi"
	"jivelink/pkg/problems"
)

// Handler exposes the community registry over HTTP.
type Handler struct {
	svc *registry.Service
	log *zap.SugaredLogger
}

func New(svc *registry.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the registry surface on r.
func (h *Handler) Routes(r chi.Router, cfg config.Config, store communities.Store) {
	r.Post("/v1/register", h.register)
	r.Post("/v1/unregister", h.unregister)

	r.Route("/v1/proxy", func(pr chi.Router) {
		pr.Use(middleware.WithCommunity(store))
		pr.HandleFunc("/*", h.proxy)
	})

	// Admin surface: JWT-guarded community inspection.
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.JWTAuth(cfg))
		ar.Get("/v1/communities", h.list)
		ar.Get("/v1/communities/{tenantID}", h.get)
	})

	r.Get("/.well-known/openapi.json", openAPIDoc().ServeHandler("registry-service", "v1"))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var payload registry.RegistrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeProblem(w, errs.Validation("bad json"))
		return
	}
	rec, err := h.svc.Register(r.Context(), payload)
	if err != nil {
		writeProblem(w, err)
		return
	}
	writeJSON(w, rec.Sanitized(), http.StatusOK)
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	var packet registry.RegistrationPayload
	if err := json.NewDecoder(r.Body).Decode(&packet); err != nil {
		writeProblem(w, errs.Validation("bad json"))
		return
	}
	if err := h.svc.Unregister(r.Context(), packet); err != nil {
		writeProblem(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

// proxy forwards the request to the resolved community's instance, with
// transparent token refresh handled by the registry.
func (h *Handler) proxy(w http.ResponseWriter, r *http.Request) {
	community := middleware.CommunityFrom(r.Context())

	path := chi.URLParam(r, "*")
	if q := r.URL.RawQuery; q != "" {
		path += "?" + q
	}

	var body []byte
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		body, _ = io.ReadAll(http.MaxBytesReader(w, r.Body, 2<<20))
	}

	headers := map[string]string{}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		headers["Content-Type"] = ct
	}
	if accept := r.Header.Get("Accept"); accept != "" {
		headers["Accept"] = accept
	}

	resp, err := h.svc.DoRequest(r.Context(), community, registry.RequestOptions{
		Path:    path,
		Method:  r.Method,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		h.log.Warnw("proxy request failed", "tenant", community.TenantID, "reqid", middleware.RequestIDFrom(r.Context()), "err", err)
		writeProblem(w, err)
		return
	}
	defer resp.Body.Close()

	countProxy(resp.StatusCode)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, http.MaxBytesReader(nil, io.NopCloser(resp.Body), 4<<20))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Find(r.Context(), communities.Filter{})
	if err != nil {
		writeProblem(w, err)
		return
	}
	out := make([]communities.Community, 0, len(list))
	for _, c := range list {
		out = append(out, c.Sanitized())
	}
	writeJSON(w, map[string]any{"items": out}, http.StatusOK)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	rec, ok, err := h.svc.FindByTenantID(r.Context(), tenantID)
	if err != nil {
		writeProblem(w, err)
		return
	}
	if !ok {
		writeProblem(w, errs.NotFound("community "+tenantID))
		return
	}
	writeJSON(w, rec.Sanitized(), http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem renders an application error as a problem+json payload.
func writeProblem(w http.ResponseWriter, err error) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindSignature:
		status = http.StatusForbidden
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindTokenExchange, errs.KindTransport:
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   problems.Type(string(kind)),
		"title":  string(kind),
		"status": status,
		"detail": err.Error(),
	})
}

func openAPIDoc() *openapi.Registry {
	doc := openapi.NewRegistry()
	ok := map[string]any{"200": map[string]any{"description": "OK"}}
	doc.Register(openapi.Operation{Method: "POST", Path: "/v1/register", Summary: "Register a community", Responses: ok})
	doc.Register(openapi.Operation{Method: "POST", Path: "/v1/unregister", Summary: "Unregister a community", Responses: ok})
	doc.Register(openapi.Operation{Method: "GET", Path: "/v1/communities", Summary: "List communities", Responses: ok})
	doc.Register(openapi.Operation{Method: "GET", Path: "/v1/communities/{tenantID}", Summary: "Fetch a community", Responses: ok})
	return doc
}
