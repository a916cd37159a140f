package referrer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/attribution/pkg/async"
	"github.com/dmitrymomot/attribution/pkg/logger"
)

// Timeouts used by the two call sites. Fingerprinting favours latency,
// click-id extraction favours getting an answer.
const (
	FingerprintTimeout = 2000 * time.Millisecond
	ClickIDTimeout     = 5000 * time.Millisecond
)

// Info is the payload delivered by the platform install-referrer channel.
// The zero value means "no referrer available".
type Info struct {
	InstallReferrer                     string `json:"installReferrer,omitempty"`
	ReferrerClickTimestampSeconds       int64  `json:"referrerClickTimestampSeconds,omitempty"`
	InstallBeginTimestampSeconds        int64  `json:"installBeginTimestampSeconds,omitempty"`
	ReferrerClickTimestampServerSeconds int64  `json:"referrerClickTimestampServerSeconds,omitempty"`
	InstallBeginTimestampServerSeconds  int64  `json:"installBeginTimestampServerSeconds,omitempty"`
	InstallVersion                      string `json:"installVersion,omitempty"`
	GooglePlayInstant                   bool   `json:"googlePlayInstant,omitempty"`
}

// Empty reports whether the payload carries nothing.
func (i Info) Empty() bool {
	return i == Info{}
}

// Fields flattens the payload into fingerprint attributes. An empty payload
// yields an empty map so merging it is a no-op.
func (i Info) Fields() map[string]any {
	if i.Empty() {
		return map[string]any{}
	}
	return map[string]any{
		"installReferrer":                     i.InstallReferrer,
		"referrerClickTimestampSeconds":       i.ReferrerClickTimestampSeconds,
		"installBeginTimestampSeconds":        i.InstallBeginTimestampSeconds,
		"referrerClickTimestampServerSeconds": i.ReferrerClickTimestampServerSeconds,
		"installBeginTimestampServerSeconds":  i.InstallBeginTimestampServerSeconds,
		"installVersion":                      i.InstallVersion,
		"googlePlayInstant":                   i.GooglePlayInstant,
	}
}

// Callback receives the channel result. err is the channel-reported failure.
type Callback func(info Info, err error)

// Channel is the platform's one-shot install-referrer API. Request registers
// cb and returns immediately; the platform invokes cb later, at most once in
// the common case. The Reader tolerates channels that call back more than
// once, never, or synchronously from inside Request.
type Channel interface {
	Request(cb Callback) error
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(cb Callback) error

func (f ChannelFunc) Request(cb Callback) error { return f(cb) }

// Reader queries a Channel with a bounded wait.
type Reader struct {
	channel Channel
	log     *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for channel failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		r.log = logger.OrDiscard(l).With(logger.Component("referrer"))
	}
}

// NewReader creates a reader. A nil channel marks a platform without an
// install-referrer concept: every Read resolves empty immediately.
func NewReader(channel Channel, opts ...Option) *Reader {
	r := &Reader{channel: channel, log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supported reports whether the reader has a channel to query.
func (r *Reader) Supported() bool {
	return r != nil && r.channel != nil
}

// Read resolves with the channel payload, or empty if the channel is absent,
// errors, panics, or does not answer within timeout. It returns exactly once;
// any result arriving after the timeout is discarded.
func (r *Reader) Read(ctx context.Context, timeout time.Duration) Info {
	if !r.Supported() {
		return Info{}
	}

	result := async.NewPromise[Info]()
	timer := time.AfterFunc(timeout, func() {
		if result.Resolve(Info{}) {
			r.log.DebugContext(ctx, "install referrer timed out", logger.Duration(timeout))
		}
	})
	defer timer.Stop()

	err := r.register(func(info Info, err error) {
		if err != nil {
			r.log.WarnContext(ctx, "install referrer channel reported an error", logger.Error(err))
			info = Info{}
		}
		if result.Resolve(info) {
			timer.Stop()
		}
	})
	if err != nil {
		r.log.WarnContext(ctx, "failed to query install referrer", logger.Error(err))
		result.Resolve(Info{})
	}

	info, err := result.Await(ctx)
	if err != nil {
		return Info{}
	}
	return info
}

func (r *Reader) register(cb Callback) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrChannelPanic, rec)
		}
	}()
	return r.channel.Request(cb)
}
