package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BidEventKind distinguishes plain bids from sealed-bid commits and reveals.
type BidEventKind int

const (
	BidPlaced BidEventKind = iota
	BidCommitted
	BidRevealed
)

func (k BidEventKind) String() string {
	switch k {
	case BidCommitted:
		return "committed"
	case BidRevealed:
		return "revealed"
	default:
		return "placed"
	}
}

// BidEvent is a bid observed in the ledger event logs. Amount is zero for
// commits, whose amount is hidden.
type BidEvent struct {
	Ref         AuctionRef
	Kind        BidEventKind
	Bidder      string
	Amount      decimal.Decimal
	Time        time.Time
	BlockNumber uint64
	LogIndex    uint64
	TxHash      string
}

// SortBidEvents orders events chronologically, oldest first.
func SortBidEvents(events []BidEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})
}
