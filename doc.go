// Package attribution is a mobile-app attribution client. It works out which
// marketing source caused an install, keeps that answer on the device and
// reports lifecycle and business events to the attribution backend.
//
// A Client starts uninitialized. Init registers the install with a project
// token; until it succeeds every other operation returns ErrNotInitialized
// without touching the network.
//
//	c, err := attribution.New("https://api.example.com",
//		attribution.WithStore(store),
//		attribution.WithDevice(fingerprint.OSAndroid, fields...),
//		attribution.WithReferrerChannel(playReferrer),
//		attribution.WithNavigator(router),
//	)
//	if err != nil {
//		return err
//	}
//	if _, err := c.Init(ctx, token); err != nil {
//		return err // only configuration problems end up here
//	}
//	_, _ = c.Signup(ctx, attribution.UserData{ID: "u_1", Email: "a@b.co"}, nil)
//
// # Errors
//
// Configuration errors (missing token, event name or payment identifier) are
// returned. Backend rejections and network failures are logged, handed to
// the ErrorHandler and swallowed: the worst outcome is a missing attribution
// record, never a failed host app. Errors from a native Bridge are returned
// wrapped in ErrBridge.
//
// # Deferred deep links
//
// A deep link returned by Init, Signup or Trigger is persisted. It is opened
// right away when the backend flags it and auto-opening is not disabled, or
// later through TriggerDeeplink. The backend is told about an opened link
// only after navigation succeeds.
package attribution
