package application

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a request fails validation, before
	// any call to the ledger.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrContractNotConfigured is returned when a protocol has no contract
	// address configured.
	ErrContractNotConfigured = errors.New("auction contract address not configured")
	// ErrUnknownListPurpose ...
	ErrUnknownListPurpose = errors.New("unknown reference list purpose")
	// ErrDuplicateService is returned when two services claim the same tag.
	ErrDuplicateService = errors.New("duplicate auction service for protocol")
	// ErrLedgerNotConfigured ...
	ErrLedgerNotConfigured = errors.New("ledger transport not configured")
)

type validatable interface {
	Validate() error
}

func validateRequest(req validatable) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return nil
}
