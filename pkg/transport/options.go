package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/attribution/pkg/logger"
)

// DefaultUserAgent identifies the client to the backend.
const DefaultUserAgent = "attribution-go/0.2.0"

type options struct {
	timeout    time.Duration
	headers    map[string]string
	userAgent  string
	httpClient *http.Client

	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration

	breaker *BreakerSettings

	onResult ResultHook
	log      *slog.Logger
}

func defaultOptions() *options {
	return &options{
		timeout:         10 * time.Second,
		headers:         make(map[string]string),
		userAgent:       DefaultUserAgent,
		maxRetries:      2,
		initialInterval: 200 * time.Millisecond,
		maxInterval:     2 * time.Second,
		log:             logger.Discard(),
	}
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the per-attempt timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithHTTPClient sets a custom HTTP client, e.g. for tests or proxies.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithMaxRetries sets how many times a transport failure is retried.
// Default is 2. Set to 0 to disable retries.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithBackoff tunes the exponential delay between retries.
func WithBackoff(initial, maxInterval time.Duration) Option {
	return func(o *options) {
		if initial > 0 {
			o.initialInterval = initial
		}
		if maxInterval >= initial && maxInterval > 0 {
			o.maxInterval = maxInterval
		}
	}
}

// WithNoRetry disables retries.
func WithNoRetry() Option {
	return WithMaxRetries(0)
}

// WithCircuitBreaker enables circuit breaking for the client.
func WithCircuitBreaker(s BreakerSettings) Option {
	return func(o *options) {
		o.breaker = &s
	}
}

// WithOnResult sets a hook invoked after every attempt.
func WithOnResult(hook ResultHook) Option {
	return func(o *options) {
		o.onResult = hook
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = logger.OrDiscard(l).With(logger.Component("transport"))
	}
}

// RetryPolicy decides which failed attempts of one call are repeated.
type RetryPolicy int

const (
	// RetryAll repeats transport failures and overload responses. Use it for
	// calls the backend can safely receive twice.
	RetryAll RetryPolicy = iota
	// RetryUnsent repeats only attempts that never reached the backend,
	// such as refused connections.
	RetryUnsent
	// RetryNever sends the request once.
	RetryNever
)

func (p RetryPolicy) allows(status int, err error) bool {
	switch p {
	case RetryNever:
		return false
	case RetryUnsent:
		return unsent(status, err)
	default:
		return retryable(status, err)
	}
}

// CallOption adjusts a single Post or Do call.
type CallOption func(*callOptions)

type callOptions struct {
	retry RetryPolicy
}

// WithRetryPolicy sets the retry policy for one call. The client's
// WithMaxRetries still caps the number of attempts.
func WithRetryPolicy(p RetryPolicy) CallOption {
	return func(o *callOptions) {
		o.retry = p
	}
}
