package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution/pkg/kvstore"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s kvstore.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, kvstore.ErrNotFound)
	assert.True(t, kvstore.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "k", "v1"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, kvstore.ErrNotFound)

	require.ErrorIs(t, s.Set(ctx, "", "x"), kvstore.ErrEmptyKey)
}

func TestMemory(t *testing.T) {
	t.Parallel()
	exerciseStore(t, kvstore.NewMemory())
}

func TestMemory_Clear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := kvstore.NewMemory()
	require.NoError(t, m.Set(ctx, "a", "1"))
	m.Clear()
	_, err := m.Get(ctx, "a")
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestMemory_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := kvstore.NewMemory().Get(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFile(t *testing.T) {
	t.Parallel()
	s, err := kvstore.NewFile(filepath.Join(t.TempDir(), "nested", "kv.json"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFile_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	first, err := kvstore.NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "install", "abc"))

	second, err := kvstore.NewFile(path)
	require.NoError(t, err)
	v, err := second.Get(ctx, "install")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestFile_Corrupted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "kv.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := kvstore.NewFile(path)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "k")
	require.ErrorIs(t, err, kvstore.ErrCorruptedFile)
}

func TestFile_EmptyPath(t *testing.T) {
	t.Parallel()
	_, err := kvstore.NewFile("")
	require.ErrorIs(t, err, kvstore.ErrEmptyPath)
}

func TestSQLite(t *testing.T) {
	t.Parallel()
	s, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "deeplink", "https://example.com/x"))
	require.NoError(t, first.Close())

	second, err := kvstore.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	v, err := second.Get(ctx, "deeplink")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", v)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	s, err := kvstore.Open(context.Background(), kvstore.DriverRedis, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvstore.Close(s) })
	exerciseStore(t, kvstore.NewScoped(s, "kvstore-test"))
}

func TestScoped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := kvstore.NewMemory()

	a := kvstore.NewScoped(base, "app-a:")
	b := kvstore.NewScoped(base, "app-b")

	require.NoError(t, a.Set(ctx, "id", "A"))
	require.NoError(t, b.Set(ctx, "id", "B"))

	v, err := base.Get(ctx, "app-a:id")
	require.NoError(t, err)
	assert.Equal(t, "A", v)

	v, err = b.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "B", v)

	exerciseStore(t, a)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	mem, err := kvstore.Open(ctx, kvstore.DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &kvstore.Memory{}, mem)

	file, err := kvstore.Open(ctx, kvstore.DriverFile, filepath.Join(dir, "kv.json"))
	require.NoError(t, err)
	assert.IsType(t, &kvstore.File{}, file)

	db, err := kvstore.Open(ctx, kvstore.DriverSQLite, filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	assert.IsType(t, &kvstore.SQLite{}, db)
	require.NoError(t, kvstore.Close(db))

	_, err = kvstore.Open(ctx, "etcd", "")
	require.ErrorIs(t, err, kvstore.ErrUnknownDriver)

	assert.NoError(t, kvstore.Close(mem))
}

func TestOpen_RedisConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := kvstore.Open(ctx, kvstore.DriverRedis, "", kvstore.WithRedisConfig(kvstore.RedisConfig{
		ConnectionURL: "mysql://localhost:3306",
	}))
	assert.ErrorIs(t, err, kvstore.ErrInvalidRedisURL)

	// A location passed to Open wins over the configured URL.
	_, err = kvstore.Open(ctx, kvstore.DriverRedis, "::not a url", kvstore.WithRedisConfig(kvstore.RedisConfig{
		ConnectionURL: "redis://localhost:6379/0",
	}))
	assert.ErrorIs(t, err, kvstore.ErrInvalidRedisURL)
}

func TestScoped_CloseClosesWrappedStore(t *testing.T) {
	t.Parallel()

	db, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	s := kvstore.NewScoped(db, "proj")
	require.NoError(t, kvstore.Close(s))

	_, err = db.Get(context.Background(), "id")
	assert.Error(t, err)
}
