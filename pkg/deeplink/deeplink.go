package deeplink

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/logger"
)

// StorageKey is where the deferred deep link lives in durable storage.
const StorageKey = "attribution:deferred_deeplink:v1"

// Store persists the deep link returned by the backend so it can be
// activated after the app's navigation is ready, possibly in a later session.
type Store struct {
	kv  kvstore.Store
	log *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger for storage failures.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger.OrDiscard(l).With(logger.Component("deeplink"))
	}
}

// NewStore creates a deep-link store over kv.
func NewStore(kv kvstore.Store, opts ...StoreOption) *Store {
	s := &Store{kv: kv, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists url, replacing any previous link. It is best-effort:
// failures are logged and returned but callers are not expected to act on them.
func (s *Store) Save(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyURL
	}
	if err := s.kv.Set(ctx, StorageKey, url); err != nil {
		s.log.WarnContext(ctx, "failed to store deferred deep link", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Load returns the stored link. Missing links and storage errors both
// report false.
func (s *Store) Load(ctx context.Context) (string, bool) {
	url, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !kvstore.IsNotFound(err) {
			s.log.WarnContext(ctx, "failed to read deferred deep link", logger.Error(err))
		}
		return "", false
	}
	if url == "" {
		return "", false
	}
	return url, true
}

// ShouldAutoTrigger reports whether a link returned by the backend must be
// activated immediately: the backend sent a link, asked for the trigger, and
// the client has not opted out.
func ShouldAutoTrigger(link string, flag, disabled bool) bool {
	return strings.TrimSpace(link) != "" && flag && !disabled
}
