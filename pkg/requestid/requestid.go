package requestid

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the correlation id.
const Header = "X-Request-ID"

const maxLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type contextKey struct{}

// New returns a fresh random id.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id is safe to put on the wire and in logs.
func Valid(id string) bool {
	return id != "" && len(id) <= maxLength && validID.MatchString(id)
}

// WithContext attaches id to ctx. Backend calls made with the returned
// context send id instead of generating one.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Resolve returns the valid id stored in ctx or a fresh one.
func Resolve(ctx context.Context) string {
	if id := FromContext(ctx); Valid(id) {
		return id
	}
	return New()
}
