package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	EventsAssigned           = prometheus.NewCounter(prometheus.CounterOpts{Name: "events_assigned_total", Help: "Events handed out under a lease"})
	ReviewsCompleted         = prometheus.NewCounter(prometheus.CounterOpts{Name: "reviews_completed_total", Help: "Reviews acknowledged regionally and recorded centrally"})
	RegionalDeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "regional_delivery_failures_total", Help: "Review deliveries the regional authority did not acknowledge"})
	LeasesRequeued           = prometheus.NewCounter(prometheus.CounterOpts{Name: "leases_requeued_total", Help: "Expired leases returned to the pending pool"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			EventsAssigned,
			ReviewsCompleted,
			RegionalDeliveryFailures,
			LeasesRequeued,
		)
	})
	return promhttp.Handler()
}
