package metrics

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/dmitrymomot/attribution/pkg/transport"
)

const namespace = "attribution"

// Outcomes of a single backend attempt.
const (
	OutcomeOK           = "ok"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
)

// Recorder holds the client metrics. Each Recorder owns its registry, so
// several clients in one process never collide.
type Recorder struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	retries    *prometheus.CounterVec
	operations *prometheus.CounterVec
	breaker    *prometheus.GaugeVec
}

// New creates a recorder with a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Backend HTTP attempts by endpoint, outcome and status code",
			},
			[]string{"endpoint", "outcome", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Time spent on backend HTTP attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_retries_total",
				Help:      "Backend attempts beyond the first",
			},
			[]string{"endpoint"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Client operations by name and result",
			},
			[]string{"operation", "result"},
		),
		breaker: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_open",
				Help:      "1 while the backend circuit breaker is open",
			},
			[]string{"breaker"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration, r.retries, r.operations, r.breaker)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveAttempt records one backend attempt. It matches transport.ResultHook.
func (r *Recorder) ObserveAttempt(res transport.Result) {
	outcome := OutcomeOK
	switch {
	case res.Err != nil && res.StatusCode > 0:
		outcome = OutcomeHTTPError
	case res.Err != nil:
		outcome = OutcomeNetworkError
	}

	r.requests.WithLabelValues(res.Path, outcome, strconv.Itoa(res.StatusCode)).Inc()
	r.duration.WithLabelValues(res.Path).Observe(res.Duration.Seconds())
	if res.Attempt > 1 {
		r.retries.WithLabelValues(res.Path).Inc()
	}
}

// ObserveOperation counts a facade operation result.
func (r *Recorder) ObserveOperation(operation, result string) {
	r.operations.WithLabelValues(operation, result).Inc()
}

// ObserveBreaker tracks circuit breaker transitions. It matches
// transport.BreakerSettings.OnStateChange.
func (r *Recorder) ObserveBreaker(name, _, to string) {
	v := 0.0
	if to == "open" {
		v = 1
	}
	r.breaker.WithLabelValues(name).Set(v)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteText dumps every metric family in text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
