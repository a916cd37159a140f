package kvstore

import "errors"

var (
	ErrNotFound         = errors.New("kvstore: key not found")
	ErrEmptyKey         = errors.New("kvstore: empty key")
	ErrEmptyPath        = errors.New("kvstore: empty store path")
	ErrUnknownDriver    = errors.New("kvstore: unknown driver")
	ErrCorruptedFile    = errors.New("kvstore: corrupted store file")
	ErrRedisNotReady    = errors.New("kvstore: redis did not become ready within the given time period")
	ErrInvalidRedisURL  = errors.New("kvstore: failed to parse redis connection string")
	ErrSQLiteOpenFailed = errors.New("kvstore: failed to open sqlite database")
)
