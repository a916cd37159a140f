// Package metrics records client-side Prometheus metrics: backend attempts,
// latencies, retries, circuit breaker state and facade operation results.
//
//	rec := metrics.New()
//	c, _ := transport.New(baseURL,
//		transport.WithOnResult(rec.ObserveAttempt),
//		transport.WithCircuitBreaker(transport.BreakerSettings{OnStateChange: rec.ObserveBreaker}),
//	)
package metrics
