// Package metrics defines the Prometheus metric collectors used by the catalog
// services and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the catalog services.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	CatalogEntries       prometheus.Gauge
	HiddenFilters        *prometheus.GaugeVec
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	FilterOpsTotal       *prometheus.CounterVec
	InvalidFiltersTotal  *prometheus.CounterVec
	BooksIngestedTotal   *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. Passing nil
// registers against the Prometheus default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		CatalogEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_entries",
				Help: "Number of entries held in the catalog.",
			},
		),
		HiddenFilters: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_hidden_filters",
				Help: "Number of hidden values by kind (subject, author).",
			},
			[]string{"kind"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_search_queries_total",
				Help: "Total search queries by result type (hit, zero_result).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_search_latency_seconds",
				Help:    "Catalog scan latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_search_results_count",
				Help:    "Number of matching entries per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		FilterOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_filter_ops_total",
				Help: "Filter mutations by kind (subject, author) and op (hide, remove).",
			},
			[]string{"kind", "op"},
		),
		InvalidFiltersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_invalid_filters_total",
				Help: "Hide operations whose value matched no catalog entry.",
			},
			[]string{"kind"},
		),
		BooksIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_books_ingested_total",
				Help: "Books added to the catalog by source (api, kafka, postgres).",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.CatalogEntries,
		m.HiddenFilters,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.FilterOpsTotal,
		m.InvalidFiltersTotal,
		m.BooksIngestedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
