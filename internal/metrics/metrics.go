package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
//
// Every Record method is safe on a nil *Registry, so engine components can be
// built without metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	yieldSolves        *prometheus.CounterVec
	solverIterations   prometheus.Histogram
	projectionCache    *prometheus.CounterVec
	inflationFallbacks prometheus.Counter
	valuationDuration  *prometheus.HistogramVec
	valuationsTotal    *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.yieldSolves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondcalc_yield_solves_total",
			Help: "Total number of position yield solves",
		},
		[]string{"status"},
	)
	r.solverIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bondcalc_solver_iterations",
			Help:    "Root finder iterations per yield solve",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		},
	)
	r.projectionCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondcalc_projection_cache_total",
			Help: "Cashflow projection cache lookups",
		},
		[]string{"result"},
	)
	r.inflationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bondcalc_inflation_fallbacks_total",
			Help: "Forced-fixed inflation adjustments that fell back to an earlier coefficient",
		},
	)
	r.valuationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bondcalc_valuation_duration_seconds",
			Help:    "Position valuation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method"},
	)
	r.valuationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondcalc_valuations_total",
			Help: "Total number of position valuations",
		},
		[]string{"method", "status"},
	)

	reg.MustRegister(r.yieldSolves)
	reg.MustRegister(r.solverIterations)
	reg.MustRegister(r.projectionCache)
	reg.MustRegister(r.inflationFallbacks)
	reg.MustRegister(r.valuationDuration)
	reg.MustRegister(r.valuationsTotal)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, route string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, route, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordYieldSolve records a finished yield solve.
func (r *Registry) RecordYieldSolve(status string, iterations int) {
	if r == nil {
		return
	}
	r.yieldSolves.WithLabelValues(status).Inc()
	r.solverIterations.Observe(float64(iterations))
}

// RecordCacheLookup records a projection cache hit or miss.
func (r *Registry) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.projectionCache.WithLabelValues(result).Inc()
}

// RecordInflationFallback records a forced-fixed fallback to an earlier
// coefficient.
func (r *Registry) RecordInflationFallback() {
	if r == nil {
		return
	}
	r.inflationFallbacks.Inc()
}

// RecordValuation records a position valuation.
func (r *Registry) RecordValuation(method, status string, duration float64) {
	if r == nil {
		return
	}
	r.valuationsTotal.WithLabelValues(method, status).Inc()
	r.valuationDuration.WithLabelValues(method).Observe(duration)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
