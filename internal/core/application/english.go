package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

const (
	englishGetAuction   = "auctions"
	englishBid          = "bid"
	englishWithdraw     = "withdraw"
	englishCreatedEvent = "AuctionCreated"
	englishBidEvent     = "BidPlaced"
)

type englishAuction struct {
	Seller        string          `json:"seller"`
	NFT           string          `json:"nft"`
	TokenID       decimal.Decimal `json:"tokenId"`
	StartingBid   decimal.Decimal `json:"startingBid"`
	HighestBid    decimal.Decimal `json:"highestBid"`
	HighestBidder string          `json:"highestBidder"`
	StartAt       int64           `json:"startAt"`
	EndAt         int64           `json:"endAt"`
	MinIncrement  decimal.Decimal `json:"minIncrement"`
	Ended         bool            `json:"ended"`
}

func (a englishAuction) toState(ref domain.AuctionRef) *domain.AuctionState {
	return &domain.AuctionState{
		Ref:        ref,
		Auctioneer: a.Seller,
		Asset: domain.Asset{
			Kind:     domain.AssetNonFungible,
			Contract: a.NFT,
			Value:    a.TokenID,
		},
		StartingPrice: a.StartingBid,
		CurrentPrice:  a.HighestBid,
		HighestBidder: a.HighestBidder,
		StartAt:       unixTime(a.StartAt),
		Deadline:      unixTime(a.EndAt),
		Increment: domain.BidIncrement{
			Kind:  domain.IncrementAbsolute,
			Value: a.MinIncrement,
		},
		Ended: a.Ended,
	}
}

type englishService struct {
	auctionBase
}

// NewEnglishService returns the service of ascending open-bid auctions.
func NewEnglishService(
	contract string, ledger ports.Ledger, scan ScanConfig, clock ports.Clock,
) (AuctionService, error) {
	base, err := newAuctionBase(
		domain.ProtocolEnglish, contract, ledger, scan, clock, englishCreatedEvent,
	)
	if err != nil {
		return nil, err
	}
	return &englishService{base}, nil
}

func (s *englishService) GetAuction(
	ctx context.Context, ref domain.AuctionRef,
) (*domain.AuctionState, error) {
	if err := s.checkRef(ref); err != nil {
		return nil, err
	}

	var a englishAuction
	if err := s.read(ctx, englishGetAuction, &a, idArg(ref)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	if err := notFound(ref, a.Seller); err != nil {
		return nil, err
	}
	return a.toState(ref), nil
}

func (s *englishService) GetBidHistory(
	ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
) ([]domain.BidEvent, error) {
	return s.history(ctx, ref, rangeHint, fieldBidder, map[string]domain.BidEventKind{
		englishBidEvent: domain.BidPlaced,
	})
}

func (s *englishService) GetAllAuctions(
	ctx context.Context, rangeHint *domain.BlockRange,
) ([]domain.AuctionState, error) {
	return s.getAll(ctx, rangeHint, s.GetAuction)
}

func (s *englishService) SubmitBid(ctx context.Context, req BidRequest) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if err := checkBiddable(state, s.now()); err != nil {
		return nil, err
	}
	if minBid := state.MinNextBid(); req.Amount.LessThan(minBid) {
		return nil, fmt.Errorf("%w: got %s, min %s", domain.ErrBidTooLow, req.Amount, minBid)
	}

	tx := s.tx(req.Bidder, englishBid, idArg(req.Ref))
	tx.Value = req.Amount
	return s.send(ctx, req.Ref, "bid", tx)
}

func (s *englishService) SubmitCommitment(context.Context, CommitRequest) (*Submission, error) {
	return nil, s.notApplicable("commit")
}

func (s *englishService) RevealBid(context.Context, RevealRequest) (*Submission, error) {
	return nil, s.notApplicable("reveal")
}

// GetCurrentPrice returns the highest bid.
func (s *englishService) GetCurrentPrice(
	ctx context.Context, ref domain.AuctionRef,
) (decimal.Decimal, error) {
	state, err := s.GetAuction(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return state.CurrentPrice, nil
}

// Withdraw settles the auction for the seller, or refunds an outbid bidder.
func (s *englishService) Withdraw(
	ctx context.Context, req WithdrawRequest,
) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if err := checkWithdrawable(state, s.now()); err != nil {
		return nil, err
	}
	return s.send(ctx, req.Ref, "withdraw", s.tx(req.Account, englishWithdraw, idArg(req.Ref)))
}
