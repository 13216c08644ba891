package dbbadger

import "errors"

var (
	// ErrMissingSecretRepository ...
	ErrMissingSecretRepository = errors.New("secret repository must not be nil")
)
