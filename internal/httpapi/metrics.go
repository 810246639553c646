// internal/httpapi/metrics.go
package httpapi

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"jivelink/internal/registry"
	"jivelink/pkg/communities"
)

var (
	lifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jivelink_lifecycle_events_total",
		Help: "Community lifecycle notifications by event name.",
	}, []string{"event"})

	proxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jivelink_proxy_requests_total",
		Help: "Proxied requests by upstream status code.",
	}, []string{"code"})
)

// MetricsObserver counts lifecycle events; register it on the registry at
// service setup.
func MetricsObserver() registry.Observer {
	return func(event registry.Event, _ communities.Community, _ error) {
		lifecycleEvents.WithLabelValues(string(event)).Inc()
	}
}

func countProxy(status int) {
	proxyRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
