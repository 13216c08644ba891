package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

const (
	allPayGetAuction   = "getAuction"
	allPayBid          = "placeBid"
	allPayClaim        = "claim"
	allPayCreatedEvent = "AuctionStarted"
	allPayBidEvent     = "BidSubmitted"
)

// All-pay contracts auction an amount of fungible tokens. Every bid is paid
// whether it wins or not.
type allPayAuction struct {
	Auctioneer      string          `json:"auctioneer"`
	Token           string          `json:"token"`
	TokenAmount     decimal.Decimal `json:"tokenAmount"`
	ReservePrice    decimal.Decimal `json:"reservePrice"`
	HighestBid      decimal.Decimal `json:"highestBid"`
	HighestBidder   string          `json:"highestBidder"`
	StartTime       int64           `json:"startTime"`
	EndTime         int64           `json:"endTime"`
	BidIncrementBps decimal.Decimal `json:"bidIncrementBps"`
	Claimed         bool            `json:"claimed"`
}

func (a allPayAuction) toState(ref domain.AuctionRef) *domain.AuctionState {
	return &domain.AuctionState{
		Ref:        ref,
		Auctioneer: a.Auctioneer,
		Asset: domain.Asset{
			Kind:     domain.AssetFungible,
			Contract: a.Token,
			Value:    a.TokenAmount,
		},
		StartingPrice: a.ReservePrice,
		CurrentPrice:  a.HighestBid,
		HighestBidder: a.HighestBidder,
		StartAt:       unixTime(a.StartTime),
		Deadline:      unixTime(a.EndTime),
		Increment: domain.BidIncrement{
			Kind:  domain.IncrementBasisPoints,
			Value: a.BidIncrementBps,
		},
		Ended: a.Claimed,
	}
}

type allPayService struct {
	auctionBase
}

// NewAllPayService returns the service of all-pay auctions.
func NewAllPayService(
	contract string, ledger ports.Ledger, scan ScanConfig, clock ports.Clock,
) (AuctionService, error) {
	base, err := newAuctionBase(
		domain.ProtocolAllPay, contract, ledger, scan, clock, allPayCreatedEvent,
	)
	if err != nil {
		return nil, err
	}
	return &allPayService{base}, nil
}

func (s *allPayService) GetAuction(
	ctx context.Context, ref domain.AuctionRef,
) (*domain.AuctionState, error) {
	if err := s.checkRef(ref); err != nil {
		return nil, err
	}

	var a allPayAuction
	if err := s.read(ctx, allPayGetAuction, &a, idArg(ref)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	if err := notFound(ref, a.Auctioneer); err != nil {
		return nil, err
	}
	return a.toState(ref), nil
}

func (s *allPayService) GetBidHistory(
	ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
) ([]domain.BidEvent, error) {
	return s.history(ctx, ref, rangeHint, fieldBidder, map[string]domain.BidEventKind{
		allPayBidEvent: domain.BidPlaced,
	})
}

func (s *allPayService) GetAllAuctions(
	ctx context.Context, rangeHint *domain.BlockRange,
) ([]domain.AuctionState, error) {
	return s.getAll(ctx, rangeHint, s.GetAuction)
}

// SubmitBid pays the amount into the auction. The payment is not refunded
// if the bid is outbid.
func (s *allPayService) SubmitBid(ctx context.Context, req BidRequest) (*Submission, error) {
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

	tx := s.tx(req.Bidder, allPayBid, idArg(req.Ref))
	tx.Value = req.Amount
	return s.send(ctx, req.Ref, "bid", tx)
}

func (s *allPayService) SubmitCommitment(context.Context, CommitRequest) (*Submission, error) {
	return nil, s.notApplicable("commit")
}

func (s *allPayService) RevealBid(context.Context, RevealRequest) (*Submission, error) {
	return nil, s.notApplicable("reveal")
}

func (s *allPayService) GetCurrentPrice(
	ctx context.Context, ref domain.AuctionRef,
) (decimal.Decimal, error) {
	state, err := s.GetAuction(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return state.CurrentPrice, nil
}

// Withdraw claims the tokens for the winner, or the bids for the auctioneer.
func (s *allPayService) Withdraw(
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
	return s.send(ctx, req.Ref, "withdraw", s.tx(req.Account, allPayClaim, idArg(req.Ref)))
}
