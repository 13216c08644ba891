package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"github.com/tdex-network/tdex-auctions/pkg/pricecurve"
)

const (
	dutchGetAuction   = "getAuction"
	dutchBuy          = "buy"
	dutchWithdraw     = "withdraw"
	dutchCreatedEvent = "AuctionCreated"
	dutchSoldEvent    = "AuctionSold"
	dutchBuyerField   = "buyer"
	dutchPriceField   = "price"
)

var dutchShapes = map[domain.ProtocolTag]pricecurve.Shape{
	domain.ProtocolLinear:      pricecurve.Linear,
	domain.ProtocolExponential: pricecurve.Exponential,
	domain.ProtocolLogarithmic: pricecurve.Logarithmic,
}

// Each decay shape is deployed as its own contract sharing this layout. The
// decay rate is an 18 decimals fixed point number per second.
type dutchAuction struct {
	Seller       string          `json:"seller"`
	NFT          string          `json:"nft"`
	TokenID      decimal.Decimal `json:"tokenId"`
	StartPrice   decimal.Decimal `json:"startPrice"`
	ReservePrice decimal.Decimal `json:"reservePrice"`
	StartTime    int64           `json:"startTime"`
	Duration     int64           `json:"duration"`
	DecayRateWad decimal.Decimal `json:"decayRateWad"`
	Sold         bool            `json:"sold"`
	Buyer        string          `json:"buyer"`
	SoldPrice    decimal.Decimal `json:"soldPrice"`
}

func (a dutchAuction) terms() domain.DutchTerms {
	return domain.DutchTerms{
		ReservedPrice: a.ReservePrice,
		Duration:      time.Duration(a.Duration) * time.Second,
		DecayFactor:   wadToFloat(a.DecayRateWad),
	}
}

type dutchService struct {
	auctionBase
	shape pricecurve.Shape
}

// NewDutchService returns the service of the descending-price auctions
// decaying with the shape of the given protocol.
func NewDutchService(
	protocol domain.ProtocolTag, contract string, ledger ports.Ledger,
	scan ScanConfig, clock ports.Clock,
) (AuctionService, error) {
	shape, ok := dutchShapes[protocol]
	if !ok {
		return nil, fmt.Errorf(
			"%s is not a dutch protocol: %w", protocol, domain.ErrUnsupportedProtocol,
		)
	}
	base, err := newAuctionBase(protocol, contract, ledger, scan, clock, dutchCreatedEvent)
	if err != nil {
		return nil, err
	}
	return &dutchService{base, shape}, nil
}

// curve builds the price curve of the auction. A seller can configure any
// parameter on-chain, a curve that does not validate matches
// domain.ErrConfiguration.
func (s *dutchService) curve(state *domain.AuctionState) (*pricecurve.Curve, error) {
	curve, err := pricecurve.NewCurve(pricecurve.Params{
		StartPrice:    state.StartingPrice,
		ReservedPrice: state.Dutch.ReservedPrice,
		Duration:      state.Dutch.Duration,
		DecayFactor:   state.Dutch.DecayFactor,
		Shape:         s.shape,
	})
	if err != nil {
		return nil, fmt.Errorf("price curve of %s: %w", state.Ref, err)
	}
	return curve, nil
}

// livePrice is the integer price the contract asks at now.
func (s *dutchService) livePrice(
	state *domain.AuctionState, now time.Time,
) (decimal.Decimal, error) {
	curve, err := s.curve(state)
	if err != nil {
		return decimal.Zero, err
	}
	return curve.PriceAtTime(state.StartAt, now).Floor(), nil
}

// GetAuction returns the snapshot with CurrentPrice computed at the time of
// the fetch, or the sale price once sold.
func (s *dutchService) GetAuction(
	ctx context.Context, ref domain.AuctionRef,
) (*domain.AuctionState, error) {
	if err := s.checkRef(ref); err != nil {
		return nil, err
	}

	var a dutchAuction
	if err := s.read(ctx, dutchGetAuction, &a, idArg(ref)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", ref, err)
	}
	if err := notFound(ref, a.Seller); err != nil {
		return nil, err
	}

	terms := a.terms()
	startAt := unixTime(a.StartTime)
	state := &domain.AuctionState{
		Ref:        ref,
		Auctioneer: a.Seller,
		Asset: domain.Asset{
			Kind:     domain.AssetNonFungible,
			Contract: a.NFT,
			Value:    a.TokenID,
		},
		StartingPrice: a.StartPrice,
		HighestBidder: a.Buyer,
		StartAt:       startAt,
		Deadline:      startAt.Add(terms.Duration),
		Ended:         a.Sold,
		Dutch:         &terms,
	}

	if a.Sold {
		state.CurrentPrice = a.SoldPrice
		return state, nil
	}
	price, err := s.livePrice(state, s.now())
	if err != nil {
		return nil, err
	}
	state.CurrentPrice = price
	return state, nil
}

func (s *dutchService) GetBidHistory(
	ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
) ([]domain.BidEvent, error) {
	if err := s.checkRef(ref); err != nil {
		return nil, err
	}

	logs, err := s.scanner.scan(ctx, ports.LogFilter{
		Contract: s.contract,
		Event:    dutchSoldEvent,
		Topics:   auctionTopic(ref),
	}, rangeHint)
	if err != nil {
		return nil, err
	}

	events := make([]domain.BidEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := decodeEvent(l)
		if err != nil {
			return nil, err
		}
		price, err := fields.amount(dutchPriceField)
		if err != nil {
			return nil, err
		}
		events = append(events, domain.BidEvent{
			Ref:         ref,
			Kind:        domain.BidPlaced,
			Bidder:      fields.address(dutchBuyerField),
			Amount:      price,
			Time:        unixTime(l.Timestamp),
			BlockNumber: l.BlockNumber,
			LogIndex:    l.LogIndex,
			TxHash:      l.TxHash,
		})
	}
	return events, nil
}

func (s *dutchService) GetAllAuctions(
	ctx context.Context, rangeHint *domain.BlockRange,
) ([]domain.AuctionState, error) {
	return s.getAll(ctx, rangeHint, s.GetAuction)
}

// SubmitBid buys the item. The amount must cover the price at the time of
// the request; any excess is refunded by the contract.
func (s *dutchService) SubmitBid(ctx context.Context, req BidRequest) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if state.Ended {
		return nil, &domain.PhaseViolationError{Op: "buy", Phase: domain.PhaseEnded.String()}
	}
	if !state.HasStarted(now) {
		return nil, &domain.PhaseViolationError{Op: "buy", Phase: "not-started"}
	}
	if req.Amount.LessThan(state.CurrentPrice) {
		return nil, fmt.Errorf(
			"%w: got %s, price %s", domain.ErrBidTooLow, req.Amount, state.CurrentPrice,
		)
	}

	tx := s.tx(req.Bidder, dutchBuy, idArg(req.Ref))
	tx.Value = req.Amount
	return s.send(ctx, req.Ref, "buy", tx)
}

func (s *dutchService) SubmitCommitment(context.Context, CommitRequest) (*Submission, error) {
	return nil, s.notApplicable("commit")
}

func (s *dutchService) RevealBid(context.Context, RevealRequest) (*Submission, error) {
	return nil, s.notApplicable("reveal")
}

// GetCurrentPrice returns the live price from the freshest snapshot. Ended
// auctions quote no price at all, reported as zero, which is distinct from
// the reserve the curve bottoms at.
func (s *dutchService) GetCurrentPrice(
	ctx context.Context, ref domain.AuctionRef,
) (decimal.Decimal, error) {
	state, err := s.GetAuction(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}
	if state.Ended {
		return decimal.Zero, nil
	}
	return state.CurrentPrice, nil
}

// Withdraw reclaims an unsold item for the seller after the decay window.
// Sold auctions are rejected: the buy already paid the seller and handed the
// item to the buyer.
func (s *dutchService) Withdraw(
	ctx context.Context, req WithdrawRequest,
) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	state, err := s.GetAuction(ctx, req.Ref)
	if err != nil {
		return nil, err
	}
	if state.Ended {
		return nil, &domain.PhaseViolationError{Op: "withdraw", Phase: "sold"}
	}
	if err := checkWithdrawable(state, s.now()); err != nil {
		return nil, err
	}
	return s.send(ctx, req.Ref, "withdraw", s.tx(req.Account, dutchWithdraw, idArg(req.Ref)))
}
