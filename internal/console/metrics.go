package console

import (
	"github.com/prometheus/client_golang/prometheus"

	"CatalogDesk/internal/catalog"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// CatalogMetrics counts loads and mutations of the catalog core.
type CatalogMetrics struct {
	Loads     *prometheus.CounterVec
	Products  prometheus.Gauge
	Mutations *prometheus.CounterVec
}

func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	m := &CatalogMetrics{
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_loads_total",
				Help: "Catalog loads by result",
			},
			[]string{"result"},
		),
		Products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_snapshot_products",
			Help: "Products in the current catalog snapshot",
		}),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_mutations_total",
				Help: "Product mutations by operation and terminal state",
			},
			[]string{"op", "state"},
		),
	}

	reg.MustRegister(m.Loads, m.Products, m.Mutations)
	return m
}

func (m *CatalogMetrics) LoadHook() catalog.LoadHook {
	return func(n int, err error) {
		if err != nil {
			m.Loads.WithLabelValues(resultError).Inc()
			return
		}
		m.Loads.WithLabelValues(resultOK).Inc()
		m.Products.Set(float64(n))
	}
}

func (m *CatalogMetrics) Observer() catalog.Observer {
	return func(t catalog.Transition) {
		if t.To.Terminal() {
			m.Mutations.WithLabelValues(string(t.Op), t.To.String()).Inc()
		}
	}
}
