package identity

import (
	"context"
	"crypto/rand"
	"log/slog"

	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/logger"
)

const (
	// StorageKey is where the install-instance id lives in durable storage.
	StorageKey = "attribution:install_instance_id:v1"

	// IDLength is the number of characters in an install-instance id.
	IDLength = 20

	// Sentinel is returned instead of an id when storage is unusable, so
	// request construction can still proceed.
	Sentinel = "ERROR_GENERATING_INSTALL_INSTANCE_ID"

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
	// Bytes at or above it are rejected to keep the draw uniform.
	maxUnbiased = 256 - 256%len(alphabet)
)

// Manager resolves the stable identifier scoping every call from one install.
//
// Resolution is read-then-write without locking. Two concurrent first-run
// calls may each generate and store a different id; the last write wins.
type Manager struct {
	store kvstore.Store
	log   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for storage warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = logger.OrDiscard(l).With(logger.Component("identity"))
	}
}

// NewManager creates a manager over store.
func NewManager(store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{store: store, log: logger.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the persisted id, generating and storing one when none
// exists. It never fails: storage errors yield Sentinel.
func (m *Manager) GetOrCreate(ctx context.Context) string {
	existing, err := m.store.Get(ctx, StorageKey)
	switch {
	case err == nil && Valid(existing):
		return existing
	case err == nil:
		m.log.WarnContext(ctx, "stored install instance id is malformed, regenerating", logger.Key(StorageKey))
	case !kvstore.IsNotFound(err):
		m.log.WarnContext(ctx, "failed to read install instance id", logger.Key(StorageKey), logger.Error(err))
		return Sentinel
	}

	id, err := Generate()
	if err != nil {
		m.log.WarnContext(ctx, "failed to generate install instance id", logger.Error(err))
		return Sentinel
	}

	if err := m.store.Set(ctx, StorageKey, id); err != nil {
		m.log.WarnContext(ctx, "failed to persist install instance id", logger.Key(StorageKey), logger.Error(err))
		return Sentinel
	}

	m.log.DebugContext(ctx, "generated install instance id", logger.InstallInstanceID(id))
	return id
}

// Generate draws IDLength characters independently and uniformly from the
// 62-symbol alphanumeric alphabet.
func Generate() (string, error) {
	out := make([]byte, 0, IDLength)
	buf := make([]byte, IDLength*2)

	for len(out) < IDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == IDLength {
				break
			}
		}
	}

	return string(out), nil
}

// Valid reports whether id has the shape of a generated install-instance id.
func Valid(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum {
			return false
		}
	}
	return true
}
