// Package metrics registers the prometheus instruments for the sampling
// engine, exposed through the /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SamplesServed counts items returned by sampling requests, per pool.
	SamplesServed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbridge_samples_served_total",
		Help: "Items returned by sampling requests.",
	}, []string{"pool"})

	// IndexFallbacks counts sampling requests that degraded to the full-scan
	// path because the random-key index was unavailable.
	IndexFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbridge_index_fallbacks_total",
		Help: "Sampling requests served by the scan fallback.",
	}, []string{"pool"})

	// StoreFaults counts fatal store errors surfaced to callers.
	StoreFaults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wordbridge_store_faults_total",
		Help: "Fatal store errors per pool.",
	}, []string{"pool"})
)

func init() {
	prometheus.MustRegister(SamplesServed, IndexFallbacks, StoreFaults)
}
