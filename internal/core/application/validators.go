package application

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

func (r BidRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Ref, validation.By(validateRef)),
		validation.Field(&r.Bidder, validation.By(validateAddress)),
		validation.Field(&r.Amount, validation.By(validatePositiveAmount)),
	)
}

func (r CommitRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Ref, validation.By(validateRef)),
		validation.Field(&r.Bidder, validation.By(validateAddress)),
		validation.Field(&r.Commitment, validation.By(validateCommitment)),
	)
}

func (r RevealRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Ref, validation.By(validateRef)),
		validation.Field(&r.Bidder, validation.By(validateAddress)),
		validation.Field(&r.Amount, validation.By(validatePositiveAmount)),
		validation.Field(
			&r.Salt, validation.Required, validation.Length(commitment.MinSaltLength, 0),
		),
	)
}

func (r WithdrawRequest) Validate() error {
	return validation.ValidateStruct(
		&r,
		validation.Field(&r.Ref, validation.By(validateRef)),
		validation.Field(&r.Account, validation.By(validateAddress)),
	)
}

func validateRef(value interface{}) error {
	ref, ok := value.(domain.AuctionRef)
	if !ok {
		return errors.New("must be an auction reference")
	}
	if !ref.Protocol.IsValid() {
		return domain.ErrUnsupportedProtocol
	}
	return nil
}

func validateAddress(value interface{}) error {
	addr, ok := value.(string)
	if !ok || !domain.IsValidAddress(addr) {
		return domain.ErrInvalidAddress
	}
	return nil
}

func validatePositiveAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return errors.New("must be a positive integer amount of base units")
	}
	return nil
}

func validateCommitment(value interface{}) error {
	c, ok := value.(commitment.Commitment)
	if !ok || c.IsZero() {
		return commitment.ErrInvalidCommitment
	}
	return nil
}
