package referrer

import "errors"

var (
	ErrChannelPanic       = errors.New("referrer: channel panicked")
	ErrChannelUnavailable = errors.New("referrer: install referrer service unavailable")
)
