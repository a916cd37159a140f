package clickid

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/referrer"
)

// DefaultKey is the Google Ads click identifier parameter.
const DefaultKey = "gclid"

// Parse looks up key in a referrer string. It first treats the referrer as a
// query string, then falls back to a permissive key=value match terminated by
// '&' or end of input, so loosely formed referrers still yield a value.
// Empty values count as absent.
func Parse(rawReferrer, key string) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			id, ok = "", false
		}
	}()

	if rawReferrer == "" || key == "" {
		return "", false
	}

	candidates := []string{rawReferrer}
	if unescaped, err := url.QueryUnescape(rawReferrer); err == nil && unescaped != rawReferrer {
		candidates = append(candidates, unescaped)
	}

	for _, candidate := range candidates {
		// ParseQuery keeps every pair it could decode even when it reports an error.
		values, _ := url.ParseQuery(strings.TrimPrefix(candidate, "?"))
		if v := values.Get(key); v != "" {
			return v, true
		}
	}

	pattern := keyPattern(key)
	for _, candidate := range candidates {
		if m := pattern.FindStringSubmatch(candidate); len(m) == 2 && m[1] != "" {
			return m[1], true
		}
	}

	return "", false
}

func keyPattern(key string) *regexp.Regexp {
	if key == DefaultKey {
		return defaultPattern
	}
	return regexp.MustCompile(`(?:^|[?&;\s])` + regexp.QuoteMeta(key) + `=([^&]*)`)
}

var defaultPattern = regexp.MustCompile(`(?:^|[?&;\s])` + DefaultKey + `=([^&]*)`)

// Extractor pulls the click id out of the install referrer.
type Extractor struct {
	reader  *referrer.Reader
	key     string
	timeout time.Duration
	log     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithKey changes the parameter name to look for.
func WithKey(key string) Option {
	return func(e *Extractor) {
		if key != "" {
			e.key = key
		}
	}
}

// WithTimeout overrides the referrer wait.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		e.log = logger.OrDiscard(l).With(logger.Component("clickid"))
	}
}

// NewExtractor creates an extractor reading from r with referrer.ClickIDTimeout.
func NewExtractor(r *referrer.Reader, opts ...Option) *Extractor {
	e := &Extractor{
		reader:  r,
		key:     DefaultKey,
		timeout: referrer.ClickIDTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key returns the parameter name the extractor looks for.
func (e *Extractor) Key() string {
	return e.key
}

// Extract reads the referrer and returns the click id when present.
func (e *Extractor) Extract(ctx context.Context) (string, bool) {
	info := e.reader.Read(ctx, e.timeout)
	if info.InstallReferrer == "" {
		return "", false
	}

	id, ok := Parse(info.InstallReferrer, e.key)
	if ok {
		e.log.DebugContext(ctx, "click id extracted", slog.String(e.key, id))
	}
	return id, ok
}
