package deeplink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/attribution/pkg/logger"
)

// Navigator opens a URL inside the host app.
type Navigator interface {
	Open(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

func (f NavigatorFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// ConfirmFunc tells the backend a link was opened.
type ConfirmFunc func(ctx context.Context) error

// ErrorHook observes activation failures.
type ErrorHook func(ctx context.Context, err error)

// Activator opens the stored deep link and confirms it to the backend.
//
// The confirmation runs once per successful navigation. A failed navigation
// or confirmation is reported and never retried; the stored link is kept.
type Activator struct {
	store   *Store
	nav     Navigator
	confirm ConfirmFunc
	onError ErrorHook
	log     *slog.Logger
}

// ActivatorOption configures an Activator.
type ActivatorOption func(*Activator)

// WithConfirm sets the confirmation called after a successful navigation.
func WithConfirm(fn ConfirmFunc) ActivatorOption {
	return func(a *Activator) {
		a.confirm = fn
	}
}

// WithErrorHook sets a hook invoked for every activation failure.
func WithErrorHook(fn ErrorHook) ActivatorOption {
	return func(a *Activator) {
		a.onError = fn
	}
}

// WithActivatorLogger sets the activator logger.
func WithActivatorLogger(l *slog.Logger) ActivatorOption {
	return func(a *Activator) {
		a.log = logger.OrDiscard(l).With(logger.Component("deeplink"))
	}
}

// NewActivator creates an activator reading from store and opening links through nav.
func NewActivator(store *Store, nav Navigator, opts ...ActivatorOption) *Activator {
	a := &Activator{store: store, nav: nav, log: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Activate opens the stored link. It returns ErrNoDeeplink when nothing is
// stored, ErrNavigation when the navigator fails and ErrConfirmation when
// the backend confirmation fails after a successful navigation.
func (a *Activator) Activate(ctx context.Context) error {
	url, ok := a.store.Load(ctx)
	if !ok {
		return a.fail(ctx, ErrNoDeeplink)
	}
	if a.nav == nil {
		return a.fail(ctx, fmt.Errorf("%w: no navigator configured", ErrNavigation))
	}

	if err := a.nav.Open(ctx, url); err != nil {
		return a.fail(ctx, fmt.Errorf("%w: %w", ErrNavigation, err))
	}
	a.log.InfoContext(ctx, "deferred deep link opened", slog.String("url", url))

	if a.confirm == nil {
		return nil
	}
	if err := a.confirm(ctx); err != nil {
		return a.fail(ctx, fmt.Errorf("%w: %w", ErrConfirmation, err))
	}
	return nil
}

func (a *Activator) fail(ctx context.Context, err error) error {
	a.log.ErrorContext(ctx, "deferred deep link activation failed", logger.Error(err))
	if a.onError != nil {
		a.onError(ctx, err)
	}
	return err
}
