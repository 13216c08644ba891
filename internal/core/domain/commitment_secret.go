package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

// CommitmentSecret is the material a bidder needs to reveal a sealed bid.
// Losing it before the reveal phase makes the bid unrecoverable.
type CommitmentSecret struct {
	Ref        AuctionRef
	Bidder     string
	Amount     decimal.Decimal
	Salt       string
	Commitment commitment.Commitment
	CreatedAt  time.Time
	// Confirmed is set once the commitment has been included on-chain.
	Confirmed bool
	TxHash    string
}

// NewCommitmentSecret computes the commitment of amount and salt for the
// given auction and bidder.
func NewCommitmentSecret(
	ref AuctionRef, bidder string, amount decimal.Decimal, salt string, now time.Time,
) (*CommitmentSecret, error) {
	if !IsValidAddress(bidder) {
		return nil, ErrInvalidAddress
	}
	c, err := commitment.Hash(amount, salt)
	if err != nil {
		return nil, err
	}
	return &CommitmentSecret{
		Ref:        ref,
		Bidder:     strings.ToLower(bidder),
		Amount:     amount,
		Salt:       salt,
		Commitment: c,
		CreatedAt:  now,
	}, nil
}

// Key returns the storage key of the secret. There is at most one secret per
// auction and bidder.
func (s CommitmentSecret) Key() string {
	return SecretKey(s.Ref, s.Bidder)
}

// Opens returns whether the stored amount and salt hash to c.
func (s CommitmentSecret) Opens(c commitment.Commitment) bool {
	return commitment.Verify(c, s.Amount, s.Salt)
}

// SecretKey returns the storage key for the secret of bidder on ref.
func SecretKey(ref AuctionRef, bidder string) string {
	return ref.Token() + "/" + strings.ToLower(bidder)
}
