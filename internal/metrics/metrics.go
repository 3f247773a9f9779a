// Package metrics exposes Prometheus instruments for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger's instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Entries       prometheus.Counter
	Exits         prometheus.Counter
	ConfirmErrors *prometheus.CounterVec
}

// New creates the instrument set.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Entries: factory.NewCounter(prometheus.CounterOpts{
			Name: "parkledger_entries_total",
			Help: "Total recorded vehicle entries.",
		}),
		Exits: factory.NewCounter(prometheus.CounterOpts{
			Name: "parkledger_exits_total",
			Help: "Total recorded vehicle exits.",
		}),
		ConfirmErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parkledger_confirm_errors_total",
			Help: "Confirm failures by error class.",
		}, []string{"class"}),
	}
}

// RegisterVehiclesInside registers the occupancy gauge. The value is
// computed at scrape time, so it stays correct across administrative
// deletes that bypass the confirm flow.
func (m *Metrics) RegisterVehiclesInside(inside func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "parkledger_vehicles_inside",
		Help: "Number of vehicles currently inside the facility.",
	}, inside))
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
