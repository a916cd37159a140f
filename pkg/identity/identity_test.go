package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution/pkg/identity"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
)

type failingStore struct {
	getErr error
	setErr error
	kvstore.Store
}

func (f failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 200 {
		id, err := identity.Generate()
		require.NoError(t, err)
		require.Len(t, id, identity.IDLength)
		require.True(t, identity.Valid(id), id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, identity.Valid("AbCdEfGhIj0123456789"))
	assert.False(t, identity.Valid("short"))
	assert.False(t, identity.Valid("AbCdEfGhIj012345678-"))
	assert.False(t, identity.Valid(identity.Sentinel))
}

func TestManager_Stable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kvstore.NewMemory()

	first := identity.NewManager(store).GetOrCreate(ctx)
	second := identity.NewManager(store).GetOrCreate(ctx)

	require.True(t, identity.Valid(first))
	assert.Equal(t, first, second)

	stored, err := store.Get(ctx, identity.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestManager_ClearedStorageYieldsNewID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kvstore.NewMemory()
	m := identity.NewManager(store)

	before := m.GetOrCreate(ctx)
	store.Clear()
	after := m.GetOrCreate(ctx)

	require.True(t, identity.Valid(after))
	assert.NotEqual(t, before, after)
}

func TestManager_ReplacesMalformedID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, identity.StorageKey, "garbage"))

	id := identity.NewManager(store).GetOrCreate(ctx)
	assert.True(t, identity.Valid(id))
}

func TestManager_StorageFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("disk full")

	tests := []struct {
		name  string
		store kvstore.Store
	}{
		{"read failure", failingStore{Store: kvstore.NewMemory(), getErr: boom}},
		{"write failure", failingStore{Store: kvstore.NewMemory(), setErr: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, identity.Sentinel, identity.NewManager(tt.store).GetOrCreate(ctx))
		})
	}
}
