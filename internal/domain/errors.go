package domain

import "errors"

var (
	// ErrInvalidInput marks a request the caller built wrong (empty or truncated image, bad ids).
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration marks a missing credential or unusable service configuration.
	// No network call is made when it is returned.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound is returned by collection stores for unknown card or folder ids.
	ErrNotFound = errors.New("not found")
)
