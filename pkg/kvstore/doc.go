// Package kvstore provides the durable key-value capability the attribution
// client persists its install identity and deferred deep link in.
//
// Store is deliberately small: string values, Get/Set/Delete, ErrNotFound for
// missing keys and no transactions. Backends:
//
//   - Memory: in-process map, used by tests to simulate restarts.
//   - File: a JSON document under the XDG data directory, rewritten atomically.
//   - SQLite: a single table in an on-device database (github.com/mattn/go-sqlite3).
//   - Redis: a shared server (github.com/redis/go-redis/v9).
//
// Scoped prefixes keys so several clients can share one backend. Open selects
// a backend by driver name, which is what the CLI and env configuration use.
package kvstore
