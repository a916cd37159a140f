package kvstore

import (
	"context"
	"errors"
	"strings"
)

// Store is an asynchronous, durable string key-value capability.
// Implementations must return ErrNotFound (possibly wrapped) for missing keys.
// No transactional guarantees are implied: callers doing read-then-write
// accept that concurrent writers may interleave.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Scoped prefixes every key so that several clients can share one backend
// without colliding.
type Scoped struct {
	next   Store
	prefix string
}

// NewScoped wraps next so keys are stored as prefix + ":" + key.
func NewScoped(next Store, prefix string) *Scoped {
	prefix = strings.TrimSuffix(prefix, ":")
	return &Scoped{next: next, prefix: prefix}
}

func (s *Scoped) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *Scoped) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return s.next.Get(ctx, s.key(key))
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.next.Set(ctx, s.key(key), value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, s.key(key))
}

// Close closes the wrapped store.
func (s *Scoped) Close() error {
	return Close(s.next)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
