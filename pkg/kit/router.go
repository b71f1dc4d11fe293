package kit

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterDeps is the ambient wiring shared by every service router.
// A nil Registry disables metrics; a nil Log disables access logs.
type RouterDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// NewRouter returns a chi router with request ids, panic recovery, access
// logs and request metrics installed, and /metrics mounted when enabled.
// Service routes are added by the caller.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID, Recoverer)
	if deps.Log != nil {
		r.Use(Logging(deps.Log))
	}
	if deps.Registry == nil {
		return r
	}

	r.Use(NewMetrics(deps.Registry).Middleware(deps.Service, ChiRoutePatternOrPath))
	if deps.MetricsEnabled {
		r.With(MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	return r
}
