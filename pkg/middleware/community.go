// pkg/middleware/community.go
package middleware

import (
	"context"
	"net/http"

	"jivelink/pkg/communities"
	"jivelink/pkg/errs"
)

type ctxCommunityKey struct{}

// WithCommunity resolves the community for proxy routes from the
// X-Tenant-ID header and stores it on the request context.
func WithCommunity(store communities.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get("X-Tenant-ID")
			if tenantID == "" {
				http.Error(w, "missing tenant", http.StatusBadRequest)
				return
			}
			c, ok, err := communities.First(r.Context(), store, communities.Filter{TenantID: tenantID})
			if err != nil {
				http.Error(w, errs.Internal("resolving tenant", err).Error(), http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "unknown tenant", http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), ctxCommunityKey{}, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CommunityFrom returns the community resolved by WithCommunity.
func CommunityFrom(ctx context.Context) communities.Community {
	if v := ctx.Value(ctxCommunityKey{}); v != nil {
		return v.(communities.Community)
	}
	return communities.Community{}
}
