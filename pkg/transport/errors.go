package transport

import "errors"

// Errors returned by the client. Backend rejections are *BackendError.
var (
	ErrTransport       = errors.New("transport: request failed")
	ErrTimeout         = errors.New("transport: request timeout")
	ErrCircuitOpen     = errors.New("transport: circuit breaker is open")
	ErrInvalidURL      = errors.New("transport: invalid base URL")
	ErrInvalidPayload  = errors.New("transport: invalid payload")
	ErrInvalidResponse = errors.New("transport: invalid response envelope")
)

// AsBackendError reports whether err is a backend rejection and returns it.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	ok := errors.As(err, &be)
	return be, ok
}

// IsCircuitOpen reports whether err came from an open circuit.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

func asStatusError(err error, target **statusError) bool {
	return errors.As(err, target)
}
