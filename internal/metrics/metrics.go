package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	upstream *prometheus.CounterVec
	cartOps  *prometheus.CounterVec
	recs     *prometheus.CounterVec
}

// New registers the storefront metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_fetch_total",
		Help: "Upstream product API calls by source and outcome.",
	}, []string{"source", "outcome"})
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutation_total",
		Help: "Remote cart writes by operation and outcome.",
	}, []string{"op", "outcome"})
	recs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_request_total",
		Help: "Recommendation widget calls by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(upstream, cartOps, recs)
	return &Metrics{upstream: upstream, cartOps: cartOps, recs: recs}
}

func (m *Metrics) UpstreamFetch(source, outcome string) {
	if m == nil || m.upstream == nil {
		return
	}
	m.upstream.WithLabelValues(normalizeLabel(source), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) CartMutation(op, outcome string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) Recommendation(outcome string) {
	if m == nil || m.recs == nil {
		return
	}
	m.recs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unknown"
	}
	return v
}
