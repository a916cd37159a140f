package deeplink

import "errors"

var (
	ErrNoDeeplink   = errors.New("deeplink: no deferred deep link stored")
	ErrEmptyURL     = errors.New("deeplink: empty url")
	ErrStoreFailed  = errors.New("deeplink: storage failure")
	ErrNavigation   = errors.New("deeplink: navigation failed")
	ErrConfirmation = errors.New("deeplink: confirmation failed")
)
