package domain

import (
	"errors"
	"fmt"

	"github.com/tdex-network/tdex-auctions/pkg/pricecurve"
)

var (
	// ErrConfiguration is returned for invalid static parameters. Invalid
	// price curves returned by pkg/pricecurve match it too.
	ErrConfiguration = pricecurve.ErrConfiguration
	// ErrNotFound is returned when an auction id does not resolve to a live
	// record on the ledger.
	ErrNotFound = errors.New("auction not found")
	// ErrUnsupportedProtocol is returned when dispatching on an unknown tag.
	ErrUnsupportedProtocol = errors.New("unsupported auction protocol")
	// ErrPhaseViolation is returned for operations attempted outside their
	// lifecycle window.
	ErrPhaseViolation = errors.New("operation not allowed in the current auction phase")
	// ErrDecode is returned for malformed persisted tokens.
	ErrDecode = errors.New("malformed auction reference token")
	// ErrTransport is returned when the ledger or its transport failed or timed
	// out. The outcome of the request is unknown.
	ErrTransport = errors.New("ledger transport failure")
	// ErrSecretMismatch is returned when a reveal does not open the stored
	// commitment.
	ErrSecretMismatch = errors.New("revealed amount and salt do not match the commitment")
	// ErrNotApplicable is returned for operations meaningless to a protocol.
	ErrNotApplicable = errors.New("operation not applicable to this auction protocol")
	// ErrAuctionEnded is returned when bidding on an auction already settled.
	ErrAuctionEnded = errors.New("auction has ended")
	// ErrBidTooLow ...
	ErrBidTooLow = errors.New("bid amount is below the minimum accepted")
	// ErrSecretNotFound ...
	ErrSecretNotFound = errors.New("no commitment secret stored for auction and bidder")
	// ErrTxFailed is returned when a submitted transaction was included but
	// reverted.
	ErrTxFailed = errors.New("transaction failed")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("invalid account address")
)

// ConfigurationError carries the reason of an ErrConfiguration failure.
type ConfigurationError struct {
	Reason error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// DecodeError is returned by DecodeRef for a token that cannot be parsed.
type DecodeError struct {
	Token  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrDecode, e.Token, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// PhaseViolationError reports the operation and the phase that rejected it.
type PhaseViolationError struct {
	Op    string
	Phase string
}

func (e *PhaseViolationError) Error() string {
	return fmt.Sprintf("%s: %s during %s", ErrPhaseViolation, e.Op, e.Phase)
}

func (e *PhaseViolationError) Is(target error) bool {
	if target == ErrAuctionEnded {
		return e.Phase == PhaseEnded.String()
	}
	return target == ErrPhaseViolation
}

// SecretMismatchError is returned by a failed reveal pre-check. It carries the
// stored secret verbatim so the bidder can correct or abandon it.
type SecretMismatchError struct {
	Secret   CommitmentSecret
	OnChain  string
	Computed string
}

func (e *SecretMismatchError) Error() string {
	return fmt.Sprintf(
		"%s: on-chain %s, computed %s for auction %s",
		ErrSecretMismatch, e.OnChain, e.Computed, e.Secret.Ref,
	)
}

func (e *SecretMismatchError) Is(target error) bool {
	return target == ErrSecretMismatch
}

// TxFailedError reports a reverted transaction.
type TxFailedError struct {
	TxHash string
	Reason string
}

func (e *TxFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrTxFailed, e.TxHash)
	}
	return fmt.Sprintf("%s: %s: %s", ErrTxFailed, e.TxHash, e.Reason)
}

func (e *TxFailedError) Is(target error) bool {
	return target == ErrTxFailed
}
