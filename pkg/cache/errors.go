package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("cache closed")

	// ErrInvalidSize is returned when a bounded cache is created with a non-positive size.
	ErrInvalidSize = errors.New("cache size must be positive")
)
