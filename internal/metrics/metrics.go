// Package metrics exposes Prometheus counters for tree edits, generator
// imports and exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curriculum_mutations_total",
		Help: "Tree edits by operation and outcome (applied or noop).",
	}, []string{"op", "outcome"})

	Normalizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curriculum_normalizations_total",
		Help: "Structures normalized, by source (generate or import).",
	}, []string{"source"})

	NormalizedScenes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "curriculum_normalized_scenes",
		Help:    "Scenes per normalized structure.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curriculum_exports_total",
		Help: "Exports by format and outcome.",
	}, []string{"format", "outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "curriculum_http_requests_total",
		Help: "HTTP requests by method and status class.",
	}, []string{"method", "status"})
)

// Outcome labels a mutation by whether it changed the tree.
func Outcome(changed bool) string {
	if changed {
		return "applied"
	}
	return "noop"
}

// Result labels an operation that can fail.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// StatusClass collapses an HTTP status into "2xx", "4xx" and so on.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
