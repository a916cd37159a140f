// Package referrer reads the platform install-referrer channel under a
// timeout.
//
// The platform API is a one-shot callback. Reader races that callback against
// a timer using an async.Promise, so the first of the two settles the result
// and the loser is discarded: a callback that wins stops the timer, a timer
// that wins makes any later callback a no-op. Registration errors and panics
// resolve empty immediately. Platforms without the concept (a nil Channel)
// resolve empty without waiting.
//
//	r := referrer.NewReader(channel)
//	info := r.Read(ctx, referrer.FingerprintTimeout)
//	if !info.Empty() {
//	    // use info.InstallReferrer
//	}
package referrer
