package transport

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/attribution/pkg/requestid"
)

// RequestIDHeader carries the correlation id of every backend call: the one
// attached with requestid.WithContext, or a fresh UUID.
const RequestIDHeader = requestid.Header

// Envelope is the response shape shared by every backend endpoint.
type Envelope[T any] struct {
	Status int    `json:"status"`
	Data   *T     `json:"data,omitempty"`
	Msg    string `json:"msg,omitempty"`
}

// OK reports whether the backend accepted the request.
func (e Envelope[T]) OK() bool {
	return e.Status == 200 || e.Status == 201
}

// BackendError is a response the backend produced but did not mark as success.
type BackendError struct {
	Status int
	Msg    string
}

func (e *BackendError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Msg)
}

// statusError marks a non-2xx HTTP response during the retry loop.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.status, sanitize(e.body))
}

// Result describes one HTTP attempt.
type Result struct {
	Path       string
	StatusCode int
	Attempt    int
	Duration   time.Duration
	Err        error
}

// ResultHook is called after every attempt.
type ResultHook func(Result)
