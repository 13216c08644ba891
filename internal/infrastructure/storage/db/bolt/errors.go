package dbbolt

import "errors"

var (
	// ErrPasswordRequired specifies that a password is required to create or
	// unlock the store.
	ErrPasswordRequired = errors.New("password must not be empty")
	// ErrInvalidPassword is returned when trying to unlock the store with an
	// incorrect password.
	ErrInvalidPassword = errors.New("password is not valid")
	// ErrStoreClosed ...
	ErrStoreClosed = errors.New("secret store is closed")
	// ErrBucketNotFound can happen only if the store has been corrupted or
	// was initialized incorrectly.
	ErrBucketNotFound = errors.New("bucket not found")
)
