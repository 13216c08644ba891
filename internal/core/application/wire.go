package application

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

const (
	fieldAuctionID = "auctionId"
	fieldBidder    = "bidder"
	fieldAmount    = "amount"

	wadDecimals = 18
)

// eventFields are the decoded fields of a contract event. Integers are
// encoded as decimal strings to survive 256 bits.
type eventFields map[string]string

func decodeEvent(l ports.Log) (eventFields, error) {
	fields := eventFields{}
	if len(l.Data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(l.Data, &fields); err != nil {
		return nil, fmt.Errorf(
			"malformed %s event in tx %s: %w", l.Event, l.TxHash, err,
		)
	}
	return fields, nil
}

func (f eventFields) uint64(name string) (uint64, error) {
	v, ok := f[name]
	if !ok {
		return 0, fmt.Errorf("missing event field %s", name)
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid event field %s: %w", name, err)
	}
	return n, nil
}

func (f eventFields) amount(name string) (decimal.Decimal, error) {
	v, ok := f[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("missing event field %s", name)
	}
	return parseUnits(v)
}

func (f eventFields) address(name string) string {
	return strings.ToLower(f[name])
}

// parseUnits parses a non-negative integer amount of base units.
func parseUnits(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() || !d.IsInteger() {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func unixTime(secs int64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// wadToFloat converts an 18 decimals fixed point number.
func wadToFloat(wad decimal.Decimal) float64 {
	f, _ := wad.Shift(-wadDecimals).Float64()
	return f
}

func idArg(ref domain.AuctionRef) string {
	return strconv.FormatUint(ref.ID, 10)
}

func auctionTopic(ref domain.AuctionRef) map[string]string {
	return map[string]string{fieldAuctionID: idArg(ref)}
}

// notFound tells whether the record read for ref is cleared or never
// existed. Contracts return a zeroed struct for unknown ids.
func notFound(ref domain.AuctionRef, auctioneer string) error {
	if domain.IsZeroAddress(auctioneer) {
		return fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	return nil
}

// toBidEvent builds a history entry from a bid log. Commit events have no
// amount field.
func toBidEvent(
	ref domain.AuctionRef, kind domain.BidEventKind, bidderField string, l ports.Log,
) (domain.BidEvent, error) {
	fields, err := decodeEvent(l)
	if err != nil {
		return domain.BidEvent{}, err
	}

	amount := decimal.Zero
	if kind != domain.BidCommitted {
		if amount, err = fields.amount(fieldAmount); err != nil {
			return domain.BidEvent{}, err
		}
	}

	return domain.BidEvent{
		Ref:         ref,
		Kind:        kind,
		Bidder:      fields.address(bidderField),
		Amount:      amount,
		Time:        unixTime(l.Timestamp),
		BlockNumber: l.BlockNumber,
		LogIndex:    l.LogIndex,
		TxHash:      l.TxHash,
	}, nil
}
