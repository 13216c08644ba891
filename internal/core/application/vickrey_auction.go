package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

const (
	vickreyGetAuction     = "getAuction"
	vickreyGetCommitment  = "commitments"
	vickreyCommit         = "commitBid"
	vickreyReveal         = "revealBid"
	vickreyWithdraw       = "withdraw"
	vickreyCreatedEvent   = "AuctionCreated"
	vickreyCommittedEvent = "BidCommitted"
	vickreyRevealedEvent  = "BidRevealed"
)

type vickreyAuction struct {
	Auctioneer       string          `json:"auctioneer"`
	NFT              string          `json:"nft"`
	TokenID          decimal.Decimal `json:"tokenId"`
	ReservePrice     decimal.Decimal `json:"reservePrice"`
	StartTime        int64           `json:"startTime"`
	CommitEnd        int64           `json:"commitEnd"`
	RevealEnd        int64           `json:"revealEnd"`
	CommitFee        decimal.Decimal `json:"commitFee"`
	HighestBid       decimal.Decimal `json:"highestBid"`
	SecondHighestBid decimal.Decimal `json:"secondHighestBid"`
	HighestBidder    string          `json:"highestBidder"`
	Revealed         uint64          `json:"revealed"`
	Ended            bool            `json:"ended"`
}

func (a vickreyAuction) toState(ref domain.AuctionRef) *domain.AuctionState {
	return &domain.AuctionState{
		Ref:        ref,
		Auctioneer: a.Auctioneer,
		Asset: domain.Asset{
			Kind:     domain.AssetNonFungible,
			Contract: a.NFT,
			Value:    a.TokenID,
		},
		StartingPrice: a.ReservePrice,
		CurrentPrice:  a.HighestBid,
		HighestBidder: a.HighestBidder,
		StartAt:       unixTime(a.StartTime),
		Deadline:      unixTime(a.RevealEnd),
		Ended:         a.Ended,
		Vickrey: &domain.VickreyTerms{
			CommitPhaseEnd: unixTime(a.CommitEnd),
			CommitFee:      a.CommitFee,
			SecondPrice:    a.SecondHighestBid,
			Revealed:       a.Revealed,
		},
	}
}

type vickreyCommitment struct {
	Commitment string `json:"commitment"`
}

type vickreyService struct {
	auctionBase
}

// NewVickreyAuctionService returns the service of sealed-bid second-price auctions.
func NewVickreyAuctionService(
	contract string, ledger ports.Ledger, scan ScanConfig, clock ports.Clock,
) (AuctionService, error) {
	base, err := newAuctionBase(
		domain.ProtocolVickrey, contract, ledger, scan, clock, vickreyCreatedEvent,
	)
	if err != nil {
		return nil, err
	}
	return &vickreyService{base}, nil
}

func (s *vickreyService) GetAuction(
	ctx context.Context, ref domain.AuctionRef,
) (*domain.AuctionState, error) {
	if err := s.checkRef(ref); err != nil {
		return nil, err
	}

	var a vickreyAuction
	if err := s.read(ctx, vickreyGetAuction, &a, idArg(ref)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	if err := notFound(ref, a.Auctioneer); err != nil {
		return nil, err
	}
	return a.toState(ref), nil
}

func (s *vickreyService) GetBidHistory(
	ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
) ([]domain.BidEvent, error) {
	return s.history(ctx, ref, rangeHint, fieldBidder, map[string]domain.BidEventKind{
		vickreyCommittedEvent: domain.BidCommitted,
		vickreyRevealedEvent:  domain.BidRevealed,
	})
}

func (s *vickreyService) GetAllAuctions(
	ctx context.Context, rangeHint *domain.BlockRange,
) ([]domain.AuctionState, error) {
	return s.getAll(ctx, rangeHint, s.GetAuction)
}

func (s *vickreyService) SubmitBid(context.Context, BidRequest) (*Submission, error) {
	return nil, s.notApplicable("open bid")
}

// SubmitCommitment publishes the commitment paying the commit fee. A later
// commit from the same bidder replaces the previous one.
func (s *vickreyService) SubmitCommitment(
	ctx context.Context, req CommitRequest,
) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if phase := state.Phase(s.now()); phase != domain.PhaseCommit {
		return nil, &domain.PhaseViolationError{Op: "commit", Phase: phase.String()}
	}

	tx := s.tx(req.Bidder, vickreyCommit, idArg(req.Ref), req.Commitment.Hex())
	tx.Value = state.Vickrey.CommitFee
	return s.send(ctx, req.Ref, "commit", tx)
}

// RevealBid checks that amount and salt open the commitment published by the
// bidder before submitting, since a wrong reveal cannot be retried.
func (s *vickreyService) RevealBid(
	ctx context.Context, req RevealRequest,
) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if phase := state.Phase(s.now()); phase != domain.PhaseReveal {
		return nil, &domain.PhaseViolationError{Op: "reveal", Phase: phase.String()}
	}

	onChain, err := s.onChainCommitment(ctx, req.Ref, req.Bidder)
	if err != nil {
		return nil, err
	}
	computed, err := commitment.Hash(req.Amount, req.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if computed != onChain {
		return nil, &domain.SecretMismatchError{
			Secret: domain.CommitmentSecret{
				Ref:        req.Ref,
				Bidder:     strings.ToLower(req.Bidder),
				Amount:     req.Amount,
				Salt:       req.Salt,
				Commitment: onChain,
			},
			OnChain:  onChain.Hex(),
			Computed: computed.Hex(),
		}
	}

	tx := s.tx(req.Bidder, vickreyReveal, idArg(req.Ref), req.Amount.String(), req.Salt)
	tx.Value = req.Amount
	return s.send(ctx, req.Ref, "reveal", tx)
}

func (s *vickreyService) onChainCommitment(
	ctx context.Context, ref domain.AuctionRef, bidder string,
) (commitment.Commitment, error) {
	var out vickreyCommitment
	if err := s.read(
		ctx, vickreyGetCommitment, &out, idArg(ref), strings.ToLower(bidder),
	); err != nil {
		return commitment.Commitment{}, fmt.Errorf("fetching commitment on %s: %w", ref, err)
	}

	c, err := commitment.FromHex(out.Commitment)
	if err != nil || c.IsZero() {
		return commitment.Commitment{}, fmt.Errorf(
			"no commitment of %s on %s: %w", bidder, ref, domain.ErrNotFound,
		)
	}
	return c, nil
}

// GetCurrentPrice returns the highest revealed bid. The winner pays the
// second highest, see VickreyTerms.SecondPrice.
func (s *vickreyService) GetCurrentPrice(
	ctx context.Context, ref domain.AuctionRef,
) (decimal.Decimal, error) {
	state, err := s.GetAuction(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	return state.CurrentPrice, nil
}

// Withdraw settles the auction, or refunds the deposit of a losing revealed
// bid.
func (s *vickreyService) Withdraw(
	ctx context.Context, req WithdrawRequest,
) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if phase := state.Phase(s.now()); phase != domain.PhaseEnded {
		return nil, &domain.PhaseViolationError{Op: "withdraw", Phase: phase.String()}
	}
	return s.send(ctx, req.Ref, "withdraw", s.tx(req.Account, vickreyWithdraw, idArg(req.Ref)))
}
