package service

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's token does not cover the requested school.
	ErrForbidden = errors.New("forbidden")
	// ErrCacheMiss is returned by a ReportCache that holds no value for a key.
	ErrCacheMiss = errors.New("cache miss")
)
