package fingerprint

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/referrer"
)

// Option configures a Collector.
type Option func(*Collector)

// WithOS sets the running platform; it decides which advertising id is queried.
func WithOS(os OS) Option {
	return func(c *Collector) {
		if os != "" {
			c.os = os
		}
	}
}

// WithFields appends declared attributes.
func WithFields(fields ...Field) Option {
	return func(c *Collector) {
		c.fields = append(c.fields, fields...)
	}
}

// WithReferrer merges the install-referrer payload into every fingerprint.
func WithReferrer(r *referrer.Reader) Option {
	return func(c *Collector) {
		c.referrer = r
	}
}

// WithReferrerTimeout overrides referrer.FingerprintTimeout.
func WithReferrerTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.referrerTimeout = d
		}
	}
}

// WithFieldTimeout overrides DefaultFieldTimeout.
func WithFieldTimeout(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.fieldTimeout = d
		}
	}
}

// WithAdvertisingID sets the source of the platform advertising identifier.
func WithAdvertisingID(src AdvertisingIDSource) Option {
	return func(c *Collector) {
		c.ads = src
	}
}

// WithAdvertisingIDDisabled registers a switch consulted on every Collect;
// when it returns true the advertising id is reported as nil without asking
// the platform.
func WithAdvertisingIDDisabled(disabled func() bool) Option {
	return func(c *Collector) {
		if disabled != nil {
			c.adsDisabled = disabled
		}
	}
}

// WithLogger sets the logger for per-field warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		c.log = logger.OrDiscard(l).With(logger.Component("fingerprint"))
	}
}
