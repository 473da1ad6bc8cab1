// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AssignmentsTotal counts recorded assignments.
	AssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagehouse_assignments_total",
			Help: "Total number of inventory assignments recorded",
		},
	)

	// UnitsAssigned counts units moved into use.
	UnitsAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagehouse_units_assigned_total",
			Help: "Total number of inventory units assigned to projects",
		},
	)

	// ReturnsTotal counts returns by result (returned, clamped).
	ReturnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagehouse_returns_total",
			Help: "Total number of assignment returns",
		},
		[]string{"result"},
	)

	// RejectedAssignments counts assignments refused for lack of stock.
	RejectedAssignments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagehouse_assignments_rejected_total",
			Help: "Total number of assignments rejected for insufficient availability",
		},
	)

	// LedgerDrift counts returns that found in_use below the returned quantity.
	LedgerDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stagehouse_ledger_drift_total",
			Help: "Total number of ledger drift events seen while returning inventory",
		},
	)

	// Reorders counts ordering changes per collection.
	Reorders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagehouse_reorders_total",
			Help: "Total number of reorder operations",
		},
		[]string{"collection"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagehouse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stagehouse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Collection labels for Reorders.
const (
	CollectionCatalog       = "catalog"
	CollectionExtraImages   = "extra_images"
	CollectionProjectImages = "project_images"
	CollectionProjects      = "projects"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations. Requests are labelled with
// the matched route pattern rather than the raw path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
