package application

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

// BidService places open bids and settles auctions of any protocol, waiting
// for the ledger to include the transactions.
type BidService interface {
	PlaceBid(ctx context.Context, req BidRequest) (*Submission, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*Submission, error)
	CurrentPrice(ctx context.Context, ref domain.AuctionRef) (decimal.Decimal, error)
}

type bidService struct {
	registry *Registry
	tracker  TrackerService
}

func NewBidService(registry *Registry, tracker TrackerService) BidService {
	return &bidService{registry, tracker}
}

// PlaceBid never retries: if waiting for the receipt fails the pending
// submission is returned along with the error.
func (b *bidService) PlaceBid(ctx context.Context, req BidRequest) (*Submission, error) {
	svc, err := b.registry.Resolve(req.Ref)
	if err != nil {
		return nil, err
	}
	sub, err := svc.SubmitBid(ctx, req)
	if err != nil {
		return nil, err
	}
	settled, err := svc.Await(ctx, sub)
	if err != nil {
		return settled, err
	}

	if b.tracker != nil {
		if err := b.tracker.TrackBid(ctx, req.Bidder, req.Ref); err != nil {
			log.WithError(err).WithField("auction", req.Ref.Token()).Warn(
				"unable to track bid",
			)
		}
	}
	return settled, nil
}

func (b *bidService) Withdraw(
	ctx context.Context, req WithdrawRequest,
) (*Submission, error) {
	svc, err := b.registry.Resolve(req.Ref)
	if err != nil {
		return nil, err
	}
	sub, err := svc.Withdraw(ctx, req)
	if err != nil {
		return nil, err
	}
	return svc.Await(ctx, sub)
}

func (b *bidService) CurrentPrice(
	ctx context.Context, ref domain.AuctionRef,
) (decimal.Decimal, error) {
	svc, err := b.registry.Resolve(ref)
	if err != nil {
		return decimal.Zero, err
	}
	return svc.GetCurrentPrice(ctx, ref)
}
