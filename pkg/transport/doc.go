// Package transport is the JSON-over-HTTP client for the attribution backend.
//
// Every endpoint accepts a JSON body via POST and answers with an Envelope:
//
//	{"status": 201, "data": {...}, "msg": "..."}
//
// Success is decided by the envelope status (200 or 201), not by the HTTP
// status line; a 2xx answer without an envelope status is ErrInvalidResponse.
// Post and Do return *BackendError for any other status and an error
// wrapping ErrTransport for network failures, timeouts and an open circuit
// breaker. Callers that only care whether they got data can treat both the
// same way.
//
// # Retries and circuit breaking
//
// Transport failures, 5xx and 408/425/429 responses are retried with
// exponential backoff (github.com/cenkalti/backoff/v4). Other rejections are
// final. WithRetryPolicy narrows this per call: RetryUnsent repeats only
// refused connections, for requests the backend must not receive twice, and
// RetryNever sends once. WithCircuitBreaker wraps each attempt in a github.com/sony/gobreaker
// breaker; backend rejections do not count as failures.
//
// # Usage
//
//	c, err := transport.New("https://api.example.com",
//		transport.WithTimeout(5*time.Second),
//		transport.WithCircuitBreaker(transport.DefaultBreakerSettings()),
//		transport.WithOnResult(recorder.Observe),
//	)
//	data, err := transport.Post[InitData](ctx, c, "/api/client/init", req)
//
// Every call carries an X-Request-ID, shared by its retries.
package transport
