// Package clickid extracts a paid-marketing click identifier (gclid by
// default) from the install referrer.
//
// Parse is pure and works on any referrer string. Extractor combines it with
// a referrer.Reader bounded by referrer.ClickIDTimeout. Neither ever panics
// or returns an error: a missing or unparsable id is reported as absent.
//
//	Parse("utm_source=google&gclid=ABC123", "gclid") // "ABC123", true
//	Parse("no_click_id_here", "gclid")               // "", false
//	Parse("gclid", "gclid")                          // "", false
package clickid
