// Package metrics exposes prometheus counters for shift imports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import counts batches and token outcomes of the import endpoints
type Import struct {
	registry *prometheus.Registry
	Batches  *prometheus.CounterVec
	Tokens   *prometheus.CounterVec
}

// New registers the counters on a private registry
func New() *Import {
	reg := prometheus.NewRegistry()
	m := &Import{
		registry: reg,
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftledger",
			Name:      "import_batches_total",
			Help:      "Import batches received, by source.",
		}, []string{"source"}),
		Tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shiftledger",
			Name:      "import_tokens_total",
			Help:      "Raw shift tokens normalized, by outcome and reason.",
		}, []string{"outcome", "reason"}),
	}
	reg.MustRegister(m.Batches, m.Tokens, collectors.NewGoCollector())
	return m
}

// ObserveBatch records one normalized batch
func (m *Import) ObserveBatch(source string, accepted int, rejectedReasons []string) {
	m.Batches.WithLabelValues(source).Inc()
	if accepted > 0 {
		m.Tokens.WithLabelValues("accepted", "").Add(float64(accepted))
	}
	for _, r := range rejectedReasons {
		m.Tokens.WithLabelValues("rejected", r).Inc()
	}
}

// Handler serves the registry in the prometheus text format
func (m *Import) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
