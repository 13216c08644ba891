package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetKind tells whether an auctioned asset is an amount of a fungible
// token or a single non-fungible token.
type AssetKind int

const (
	AssetFungible AssetKind = iota
	AssetNonFungible
)

func (k AssetKind) String() string {
	if k == AssetNonFungible {
		return "non-fungible"
	}
	return "fungible"
}

// Asset is the item being auctioned. Value is the amount for fungible assets
// and the token id for non-fungible ones.
type Asset struct {
	Kind     AssetKind
	Contract string
	Value    decimal.Decimal
}

// IncrementKind selects how BidIncrement.Value is interpreted.
type IncrementKind int

const (
	// IncrementAbsolute is a fixed amount in base units.
	IncrementAbsolute IncrementKind = iota
	// IncrementBasisPoints is a fraction of the current price, in basis points.
	IncrementBasisPoints
)

var tenThousand = decimal.NewFromInt(10000)

// BidIncrement is the rule for the minimum step between consecutive bids.
type BidIncrement struct {
	Kind  IncrementKind
	Value decimal.Decimal
}

// Step returns the minimum increment over the given current price.
func (b BidIncrement) Step(current decimal.Decimal) decimal.Decimal {
	if b.Kind == IncrementBasisPoints {
		return current.Mul(b.Value).Div(tenThousand).Ceil()
	}
	return b.Value
}

// DutchTerms are the price-decay parameters of a descending-price auction.
type DutchTerms struct {
	ReservedPrice decimal.Decimal
	Duration      time.Duration
	DecayFactor   float64
}

// VickreyTerms are the sealed-bid specific fields.
type VickreyTerms struct {
	CommitPhaseEnd time.Time
	CommitFee      decimal.Decimal
	// SecondPrice is the second highest revealed bid, the one the winner pays.
	SecondPrice decimal.Decimal
	Revealed    uint64
}

// AuctionState is a snapshot of an auction as read from the ledger. A
// snapshot is never modified after being returned: every fetch builds a new
// one.
type AuctionState struct {
	Ref           AuctionRef
	Auctioneer    string
	Asset         Asset
	StartingPrice decimal.Decimal
	// CurrentPrice is the highest bid for ascending protocols, the price at
	// the time of the fetch for Dutch ones.
	CurrentPrice  decimal.Decimal
	HighestBidder string
	StartAt       time.Time
	Deadline      time.Time
	Increment     BidIncrement
	Ended         bool

	Dutch   *DutchTerms
	Vickrey *VickreyTerms
}

// Protocol returns the protocol tag of the auction.
func (a AuctionState) Protocol() ProtocolTag {
	return a.Ref.Protocol
}

// HasBids returns whether a highest bidder is set.
func (a AuctionState) HasBids() bool {
	return !IsZeroAddress(a.HighestBidder)
}

// IsOver returns whether the auction can no longer accept bids at now.
func (a AuctionState) IsOver(now time.Time) bool {
	return a.Ended || !now.Before(a.Deadline)
}

// HasStarted returns whether the auction opened at now.
func (a AuctionState) HasStarted(now time.Time) bool {
	return !now.Before(a.StartAt)
}

// MinNextBid returns the lowest amount an ascending-price auction accepts as
// next bid.
func (a AuctionState) MinNextBid() decimal.Decimal {
	if !a.HasBids() {
		return a.StartingPrice
	}
	return a.CurrentPrice.Add(a.Increment.Step(a.CurrentPrice))
}

// Phase returns the Vickrey phase at now. It is only meaningful for sealed
// bid auctions and returns PhaseNotStarted for the others.
func (a AuctionState) Phase(now time.Time) VickreyPhase {
	if a.Vickrey == nil {
		return PhaseNotStarted
	}
	if a.Ended {
		return PhaseEnded
	}
	return PhaseAt(now, a.StartAt, a.Vickrey.CommitPhaseEnd, a.Deadline)
}
