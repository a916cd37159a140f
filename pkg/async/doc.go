// Package async provides small generic helpers for running work concurrently
// and joining on the results.
//
// Future represents the eventual result of a computation started with Async.
// Callers wait for it with Await, AwaitContext or AwaitWithTimeout, or poll it
// with IsComplete. WaitAll joins several futures without short-circuiting on
// the first failure.
//
// Promise is a write-once cell used to race independent producers, for example
// a platform callback against a timer. Only the first Resolve settles it, so a
// late producer can never double-settle a result that was already observed.
//
// # Usage
//
//	p := async.NewPromise[string]()
//	timer := time.AfterFunc(2*time.Second, func() { p.Resolve("") })
//	channel.Request(func(v string) {
//	    if p.Resolve(v) {
//	        timer.Stop()
//	    }
//	})
//	v, err := p.Await(ctx)
//
// # Error Handling
//
// Async converts panics raised by the task into errors wrapping ErrPanic.
// AwaitWithTimeout returns ErrTimeout when the deadline passes first.
package async
