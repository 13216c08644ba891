package application

import (
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

// BidRequest places an open bid, or buys at the current price for Dutch
// auctions.
type BidRequest struct {
	Ref    domain.AuctionRef
	Bidder string
	Amount decimal.Decimal
}

// CommitRequest submits a sealed-bid commitment.
type CommitRequest struct {
	Ref        domain.AuctionRef
	Bidder     string
	Commitment commitment.Commitment
}

// RevealRequest discloses the amount and salt of a sealed bid.
type RevealRequest struct {
	Ref    domain.AuctionRef
	Bidder string
	Amount decimal.Decimal
	Salt   string
}

// WithdrawRequest settles an ended auction on behalf of Account, either the
// auctioneer collecting proceeds or a bidder claiming the item or a refund.
type WithdrawRequest struct {
	Ref     domain.AuctionRef
	Account string
}

// CommitResult is returned by a sealed-bid commit. The secret must be kept
// until the reveal.
type CommitResult struct {
	Submission *Submission
	Secret     domain.CommitmentSecret
}
