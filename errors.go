package attribution

import "errors"

// Configuration errors are returned to the caller and never reach the network.
var (
	ErrTokenRequired             = errors.New("attribution: project token is required")
	ErrNotInitialized            = errors.New("attribution: client is not initialized")
	ErrAlreadyInitialized        = errors.New("attribution: client is already initialized")
	ErrEventNameRequired         = errors.New("attribution: event name is required")
	ErrUserIDRequired            = errors.New("attribution: user id is required")
	ErrPaymentIdentifierRequired = errors.New("attribution: payment id or user id is required")
	ErrInvalidPayment            = errors.New("attribution: invalid payment type or status")
	ErrPushTokenRequired         = errors.New("attribution: push token is required")
)

// ErrBridge wraps every error raised by a native bridge so callers can tell
// a broken platform module from a backend rejection.
var ErrBridge = errors.New("attribution: native bridge failed")
