package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

// AuctionService is the uniform capability set every auction protocol
// exposes. Operations meaningless to a protocol fail with
// domain.ErrNotApplicable.
type AuctionService interface {
	// Protocol returns the tag the service is registered for.
	Protocol() domain.ProtocolTag
	// GetAuction returns a fresh snapshot of the auction.
	GetAuction(ctx context.Context, ref domain.AuctionRef) (*domain.AuctionState, error)
	// GetBidHistory returns the bids of the auction seen in the given block
	// range, oldest first. A nil range means the whole configured window.
	GetBidHistory(
		ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
	) ([]domain.BidEvent, error)
	// GetAllAuctions returns the auctions created in the given block range in
	// discovery order. Auctions failing to load are dropped and logged.
	GetAllAuctions(
		ctx context.Context, rangeHint *domain.BlockRange,
	) ([]domain.AuctionState, error)
	// SubmitBid sends a bid. The returned submission is pending.
	SubmitBid(ctx context.Context, req BidRequest) (*Submission, error)
	// SubmitCommitment sends a sealed-bid commitment.
	SubmitCommitment(ctx context.Context, req CommitRequest) (*Submission, error)
	// RevealBid discloses a sealed bid.
	RevealBid(ctx context.Context, req RevealRequest) (*Submission, error)
	// GetCurrentPrice returns the price at which the auction currently trades.
	GetCurrentPrice(ctx context.Context, ref domain.AuctionRef) (decimal.Decimal, error)
	// Withdraw settles proceeds or claims the item of an ended auction.
	Withdraw(ctx context.Context, req WithdrawRequest) (*Submission, error)
	// Await blocks until the submission is confirmed or failed.
	Await(ctx context.Context, sub *Submission) (*Submission, error)
}
