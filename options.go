package attribution

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/fingerprint"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/metrics"
	"github.com/dmitrymomot/attribution/pkg/referrer"
	"github.com/dmitrymomot/attribution/pkg/transport"
)

// ErrorHandler observes failures that operations swallow: backend
// rejections, transport errors and deep link activation problems.
type ErrorHandler func(ctx context.Context, operation string, err error)

type options struct {
	store       kvstore.Store
	os          fingerprint.OS
	fields      []fingerprint.Field
	ads         fingerprint.AdvertisingIDSource
	channel     referrer.Channel
	clickIDKey  string
	navigator   deeplink.Navigator
	bridge      Bridge
	onError     ErrorHandler
	metrics     *metrics.Recorder
	log         *slog.Logger
	appVersion  string
	platform    string
	noAutoLink  bool
	hashPII     bool
	noAds       bool
	httpClient  *http.Client
	transport   []transport.Option
	withBreaker bool
}

// Option configures a Client.
type Option func(*options)

// WithStore sets durable storage for the install-instance id and the
// deferred deep link. Defaults to an in-memory store.
func WithStore(s kvstore.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithDevice sets the platform and the device attributes collected into
// every fingerprint.
func WithDevice(os fingerprint.OS, fields ...fingerprint.Field) Option {
	return func(o *options) {
		o.os = os
		o.fields = append(o.fields, fields...)
	}
}

// WithAdvertisingIDSource sets the platform advertising id provider.
func WithAdvertisingIDSource(src fingerprint.AdvertisingIDSource) Option {
	return func(o *options) {
		o.ads = src
	}
}

// WithReferrerChannel sets the install-referrer channel. Without it the
// platform is treated as having no referrer.
func WithReferrerChannel(ch referrer.Channel) Option {
	return func(o *options) {
		o.channel = ch
	}
}

// WithClickIDKey changes the referrer parameter holding the click id.
func WithClickIDKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.clickIDKey = key
		}
	}
}

// WithNavigator sets how deferred deep links are opened.
func WithNavigator(nav deeplink.Navigator) Option {
	return func(o *options) {
		o.navigator = nav
	}
}

// WithBridge routes every operation through a native platform module.
func WithBridge(b Bridge) Option {
	return func(o *options) {
		o.bridge = b
	}
}

// WithErrorHandler sets a hook for swallowed failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.onError = h
	}
}

// WithMetrics records backend and operation metrics into rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = rec
	}
}

// WithLogger sets the client logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithAppVersion sets the host app version sent on init.
func WithAppVersion(v string) Option {
	return func(o *options) {
		o.appVersion = v
	}
}

// WithPlatform overrides the SDK platform identifier sent to the backend.
func WithPlatform(p string) Option {
	return func(o *options) {
		if p != "" {
			o.platform = p
		}
	}
}

// WithAutoDeeplinkDisabled opts out of opening deep links the backend
// flags for immediate activation.
func WithAutoDeeplinkDisabled(disabled bool) Option {
	return func(o *options) {
		o.noAutoLink = disabled
	}
}

// WithPIIHashing enables PII hashing from the start. See Client.EnablePIIHashing.
func WithPIIHashing(enabled bool) Option {
	return func(o *options) {
		o.hashPII = enabled
	}
}

// WithAdvertisingIDDisabled disables advertising id collection from the start.
func WithAdvertisingIDDisabled(disabled bool) Option {
	return func(o *options) {
		o.noAds = disabled
	}
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTransportOptions passes options through to the backend client.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) {
		o.transport = append(o.transport, opts...)
	}
}

// WithCircuitBreaker enables the backend circuit breaker with default settings.
func WithCircuitBreaker() Option {
	return func(o *options) {
		o.withBreaker = true
	}
}

// InitOption configures a single Init call.
type InitOption func(*initOptions)

type initOptions struct {
	link   string
	source Source
}

// WithLink passes the deep link the app was opened with.
func WithLink(link string) InitOption {
	return func(o *initOptions) {
		o.link = link
	}
}

// WithSource forces the acquisition source instead of deriving it from
// the click id.
func WithSource(s Source) InitOption {
	return func(o *initOptions) {
		o.source = s
	}
}

// EventOption configures a single TrackEvent call.
type EventOption func(*eventOptions)

type eventOptions struct {
	id any
}

// WithEventID attaches a deduplication id. Strings, integers and floats are
// accepted; other kinds are dropped with a warning.
func WithEventID(id any) EventOption {
	return func(o *eventOptions) {
		o.id = id
	}
}
