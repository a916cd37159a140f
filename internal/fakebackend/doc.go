// Package fakebackend is an in-process attribution backend for tests and
// local runs of attributionctl. It records every request and answers with
// configurable envelopes.
package fakebackend
