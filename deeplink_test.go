package attribution_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/attribution"
	"github.com/dmitrymomot/attribution/internal/fakebackend"
	"github.com/dmitrymomot/attribution/pkg/deeplink"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/transport"
)

func TestAutoTrigger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flag        bool
		disabled    bool
		wantOpened  int
		wantConfirm int
	}{
		{name: "flagged", flag: true, wantOpened: 1, wantConfirm: 1},
		{name: "not flagged", flag: false},
		{name: "client opted out", flag: true, disabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := fakebackend.New().WithDeeplink("app://promo", tt.flag)
			nav := &navigator{}
			c := newTestClient(t, backend,
				attribution.WithNavigator(nav),
				attribution.WithAutoDeeplinkDisabled(tt.disabled),
			)
			initClient(t, c)

			data, err := c.Signup(context.Background(), attribution.UserData{ID: "u_1"}, nil)
			require.NoError(t, err)
			assert.Equal(t, "app://promo", data.Deeplink)
			assert.Equal(t, tt.flag, data.Trigger)

			assert.Len(t, nav.urls(), tt.wantOpened)
			assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), tt.wantConfirm)
		})
	}
}

func TestTriggerDeeplink_FreshInstanceSameStore(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemory()
	ctx := context.Background()

	first := fakebackend.New()
	first.Respond(fakebackend.PathInit, fakebackend.Response{Status: 201, Data: map[string]any{"deeplink": "app://deferred/7"}})
	initClient(t, newTestClient(t, first, attribution.WithStore(store)))

	backend := fakebackend.New()
	nav := &navigator{}
	c := newTestClient(t, backend, attribution.WithStore(store), attribution.WithNavigator(nav))
	initClient(t, c)

	require.NoError(t, c.TriggerDeeplink(ctx))
	assert.Equal(t, []string{"app://deferred/7"}, nav.urls())

	confirms := backend.CallsTo(fakebackend.PathDeeplinkTriggered)
	require.Len(t, confirms, 1)
	assert.Equal(t, testToken, confirms[0].Body["token"])

	require.NoError(t, c.TriggerDeeplink(ctx))
	assert.Len(t, nav.urls(), 2)
	assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), 2)
}

func TestTriggerDeeplink_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stored   string
		navErr   error
		confirm  int
		wantErr  error
		failPath bool
	}{
		{name: "nothing stored", wantErr: deeplink.ErrNoDeeplink},
		{name: "navigation fails", stored: "app://x", navErr: errors.New("no route"), wantErr: deeplink.ErrNavigation},
		{name: "confirmation fails", stored: "app://x", confirm: 1, wantErr: deeplink.ErrConfirmation, failPath: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := kvstore.NewMemory()
			if tt.stored != "" {
				require.NoError(t, deeplink.NewStore(store).Save(ctx, tt.stored))
			}

			backend := fakebackend.New()
			if tt.failPath {
				backend.Fail(fakebackend.PathDeeplinkTriggered, 500, "down")
			}
			errs := &errorRecorder{}
			c := newTestClient(t, backend,
				attribution.WithStore(store),
				attribution.WithNavigator(&navigator{err: tt.navErr}),
				attribution.WithErrorHandler(errs.handle),
			)
			initClient(t, c)

			require.NoError(t, c.TriggerDeeplink(ctx))

			got := errs.all()
			require.Len(t, got, 1)
			assert.Equal(t, "trigger_deeplink", got[0].op)
			assert.ErrorIs(t, got[0].err, tt.wantErr)
			assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), tt.confirm)

			if tt.stored != "" {
				url, ok := deeplink.NewStore(store).Load(ctx)
				assert.True(t, ok)
				assert.Equal(t, tt.stored, url)
			}
		})
	}
}

func TestTriggerDeeplink_FailedConfirmationIsNotRetried(t *testing.T) {
	t.Parallel()

	backend := fakebackend.New()
	backend.Respond(fakebackend.PathInit, fakebackend.Response{Status: 200, Data: map[string]any{"deeplink": "app://x"}})
	backend.Fail(fakebackend.PathDeeplinkTriggered, http.StatusServiceUnavailable, "busy")
	nav := &navigator{}
	errs := &errorRecorder{}
	c := newTestClient(t, backend,
		attribution.WithNavigator(nav),
		attribution.WithErrorHandler(errs.handle),
		attribution.WithTransportOptions(
			transport.WithMaxRetries(3),
			transport.WithBackoff(time.Millisecond, 2*time.Millisecond),
		),
	)
	initClient(t, c)

	require.NoError(t, c.TriggerDeeplink(context.Background()))
	assert.Equal(t, []string{"app://x"}, nav.urls())
	assert.Len(t, backend.CallsTo(fakebackend.PathDeeplinkTriggered), 1)

	got := errs.all()
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].err, deeplink.ErrConfirmation)
}
