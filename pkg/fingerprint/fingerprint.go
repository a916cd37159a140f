package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/dmitrymomot/attribution/pkg/async"
	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/referrer"
)

// Fingerprint is a flat record of device attributes. Values are scalars or
// nil when an attribute could not be read.
type Fingerprint map[string]any

// Digest returns a 32-character hex digest of the fingerprint contents.
// Equal fingerprints always produce equal digests regardless of key order.
func (f Fingerprint) Digest() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	components := make([]string, 0, len(keys))
	for _, k := range keys {
		components = append(components, fmt.Sprintf("%s=%v", k, f[k]))
	}

	hash := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(hash[:16])
}

// DefaultFieldTimeout bounds how long Collect waits for field getters and
// the advertising id.
const DefaultFieldTimeout = 2 * time.Second

// Getter reads one device attribute. Getters may block, fail or panic; a
// getter still running when the field timeout expires is abandoned and the
// field gets its fallback.
type Getter func(ctx context.Context) (any, error)

// Field declares one attribute: its key, how to read it, and the value to
// use when reading fails.
type Field struct {
	Name     string
	Get      Getter
	Fallback any
}

// Collector gathers a Fingerprint from declared fields, the install referrer
// and the platform advertising identifier.
type Collector struct {
	os              OS
	fields          []Field
	referrer        *referrer.Reader
	referrerTimeout time.Duration
	fieldTimeout    time.Duration
	ads             AdvertisingIDSource
	adsDisabled     func() bool
	log             *slog.Logger
}

// NewCollector creates a collector. Without options it collects nothing but
// still returns an empty, non-nil Fingerprint.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		os:              OSOther,
		referrerTimeout: referrer.FingerprintTimeout,
		fieldTimeout:    DefaultFieldTimeout,
		adsDisabled:     func() bool { return false },
		log:             logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OS returns the platform the collector was configured for.
func (c *Collector) OS() OS {
	return c.os
}

// Collect reads every attribute concurrently and joins on all of them.
// It never fails: a field whose getter errors or panics gets its fallback and
// a warning is logged; the remaining fields are unaffected.
func (c *Collector) Collect(ctx context.Context) Fingerprint {
	fieldCtx, cancel := context.WithTimeout(ctx, c.fieldTimeout)
	defer cancel()

	fieldFutures := make([]*async.Future[any], len(c.fields))
	for i, f := range c.fields {
		if f.Get == nil {
			fieldFutures[i] = async.Resolved(f.Fallback)
			continue
		}
		fieldFutures[i] = async.Async(fieldCtx, f, func(ctx context.Context, f Field) (any, error) {
			return f.Get(ctx)
		})
	}

	referrerFuture := async.Resolved(referrer.Info{})
	if c.referrer.Supported() {
		referrerFuture = async.Async(ctx, c.referrerTimeout, func(ctx context.Context, timeout time.Duration) (referrer.Info, error) {
			return c.referrer.Read(ctx, timeout), nil
		})
	}

	adKey := c.os.AdvertisingIDKey()
	adFuture := async.Resolved[any](nil)
	if adKey != "" {
		adFuture = async.Async(fieldCtx, c.ads, c.advertisingID)
	}

	result := make(Fingerprint, len(c.fields)+8)
	for i, f := range c.fields {
		v, err := fieldFutures[i].AwaitContext(fieldCtx)
		if err != nil {
			c.log.WarnContext(ctx, "device attribute unavailable", logger.Field(f.Name), logger.Error(err))
			v = f.Fallback
		}
		result[f.Name] = v
	}

	if adKey != "" {
		v, err := adFuture.AwaitContext(fieldCtx)
		if err != nil {
			c.log.WarnContext(ctx, "advertising id unavailable", logger.Field(adKey), logger.Error(err))
			v = nil
		}
		result[adKey] = v
	}

	info, err := referrerFuture.Await()
	if err != nil {
		c.log.WarnContext(ctx, "install referrer unavailable", logger.Error(err))
	}
	maps.Copy(result, info.Fields())

	c.log.DebugContext(ctx, "device fingerprint collected", slog.Int("fields", len(result)), slog.String("digest", result.Digest()))
	return result
}

// advertisingID checks consent on every call; the user may revoke it at any time.
func (c *Collector) advertisingID(ctx context.Context, src AdvertisingIDSource) (any, error) {
	if src == nil || c.adsDisabled() {
		return nil, nil
	}

	allowed, err := src.TrackingAllowed(ctx)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, nil
	}

	id, err := src.AdvertisingID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" || id == zeroAdvertisingID {
		return nil, nil
	}
	return id, nil
}
