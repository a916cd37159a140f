// Package deeplink persists the deferred deep link returned at install time
// and activates it once the host app can navigate.
//
// Store keeps a single URL in durable storage so it survives restarts.
// Activator loads it, hands it to a Navigator and, only after the navigator
// succeeds, calls the confirmation function exactly once. Nothing is retried
// and the stored link is never cleared by a failure.
//
//	store := deeplink.NewStore(kv)
//	confirm := func(ctx context.Context) error {
//		_, err := transport.Post[struct{}](ctx, api, "/api/client/deeplink-triggered", req)
//		return err
//	}
//	act := deeplink.NewActivator(store, nav, deeplink.WithConfirm(confirm))
//	if err := act.Activate(ctx); errors.Is(err, deeplink.ErrNoDeeplink) {
//		// nothing to open
//	}
package deeplink
