package deeplink_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
)

type brokenStore struct{ kvstore.Store }

func (brokenStore) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (brokenStore) Set(context.Context, string, string) error   { return errors.New("disk gone") }

func TestStore_RoundTripAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kv.json")
	kv, err := kvstore.NewFile(path)
	require.NoError(t, err)

	require.NoError(t, deeplink.NewStore(kv).Save(context.Background(), "app://promo/42"))

	reopened, err := kvstore.NewFile(path)
	require.NoError(t, err)
	url, ok := deeplink.NewStore(reopened).Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, "app://promo/42", url)
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	_, ok := deeplink.NewStore(kvstore.NewMemory()).Load(context.Background())
	assert.False(t, ok)
}

func TestStore_Failures(t *testing.T) {
	t.Parallel()

	s := deeplink.NewStore(brokenStore{kvstore.NewMemory()})
	err := s.Save(context.Background(), "app://x")
	assert.ErrorIs(t, err, deeplink.ErrStoreFailed)

	_, ok := s.Load(context.Background())
	assert.False(t, ok)

	assert.ErrorIs(t, deeplink.NewStore(kvstore.NewMemory()).Save(context.Background(), " "), deeplink.ErrEmptyURL)
}

func TestActivate(t *testing.T) {
	t.Parallel()

	navErr := errors.New("screen not mounted")
	confirmErr := errors.New("backend down")

	tests := []struct {
		name         string
		stored       string
		navErr       error
		confirmErr   error
		wantErr      error
		wantOpened   int32
		wantConfirms int32
	}{
		{name: "success", stored: "app://promo", wantOpened: 1, wantConfirms: 1},
		{name: "nothing stored", wantErr: deeplink.ErrNoDeeplink},
		{name: "navigation fails", stored: "app://promo", navErr: navErr, wantErr: deeplink.ErrNavigation},
		{name: "confirmation fails", stored: "app://promo", confirmErr: confirmErr, wantErr: deeplink.ErrConfirmation, wantOpened: 1, wantConfirms: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := deeplink.NewStore(kvstore.NewMemory())
			if tt.stored != "" {
				require.NoError(t, store.Save(ctx, tt.stored))
			}

			var opened, confirms, hooked atomic.Int32
			nav := deeplink.NavigatorFunc(func(_ context.Context, url string) error {
				if tt.navErr != nil {
					return tt.navErr
				}
				assert.Equal(t, tt.stored, url)
				opened.Add(1)
				return nil
			})

			act := deeplink.NewActivator(store, nav,
				deeplink.WithConfirm(func(context.Context) error {
					confirms.Add(1)
					return tt.confirmErr
				}),
				deeplink.WithErrorHook(func(_ context.Context, err error) {
					hooked.Add(1)
				}),
			)

			err := act.Activate(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.EqualValues(t, 1, hooked.Load())
			} else {
				require.NoError(t, err)
				assert.Zero(t, hooked.Load())
			}
			assert.Equal(t, tt.wantOpened, opened.Load())
			assert.Equal(t, tt.wantConfirms, confirms.Load())

			if tt.stored != "" {
				url, ok := store.Load(ctx)
				assert.True(t, ok)
				assert.Equal(t, tt.stored, url)
			}
		})
	}
}

func TestActivate_ConfirmsOncePerNavigation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := deeplink.NewStore(kvstore.NewMemory())
	require.NoError(t, store.Save(ctx, "app://promo"))

	var confirms atomic.Int32
	act := deeplink.NewActivator(store,
		deeplink.NavigatorFunc(func(context.Context, string) error { return nil }),
		deeplink.WithConfirm(func(context.Context) error {
			confirms.Add(1)
			return nil
		}),
	)

	require.NoError(t, act.Activate(ctx))
	require.NoError(t, act.Activate(ctx))
	assert.EqualValues(t, 2, confirms.Load())
}

func TestShouldAutoTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		link     string
		flag     bool
		disabled bool
		want     bool
	}{
		{"all set", "app://x", true, false, true},
		{"no link", "", true, false, false},
		{"no flag", "app://x", false, false, false},
		{"opted out", "app://x", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, deeplink.ShouldAutoTrigger(tt.link, tt.flag, tt.disabled))
		})
	}
}
