// Package requestid correlates backend calls with the logs on both ends.
//
// The transport sends an X-Request-ID header on every call. By default each
// call gets a fresh UUID; a caller that wants several calls grouped attaches
// its own id with WithContext:
//
//	ctx = requestid.WithContext(ctx, "checkout-7f3a")
//	_ = client.TrackEvent(ctx, "checkout_started", nil)
//
// Middleware does the receiving side for HTTP servers such as the fake
// backend.
package requestid
