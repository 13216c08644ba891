package main

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

const bidder = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func TestAuctionView(t *testing.T) {
	english := domain.AuctionState{
		Ref:           domain.AuctionRef{Protocol: domain.ProtocolEnglish, ID: 7},
		StartingPrice: decimal.NewFromInt(100),
		CurrentPrice:  decimal.NewFromInt(150),
		HighestBidder: bidder,
		StartAt:       time.Unix(1000, 0),
		Deadline:      time.Unix(2000, 0),
		Increment: domain.BidIncrement{
			Kind: domain.IncrementAbsolute, Value: decimal.NewFromInt(10),
		},
	}
	v := newAuctionView(english)
	require.Equal(t, "english:7", v.Ref)
	require.Equal(t, "english", v.Protocol)
	require.Equal(t, bidder, v.HighestBidder)
	require.Equal(t, "160", v.MinNextBid)
	require.Equal(t, int64(2000), v.Deadline)
	require.Nil(t, v.Dutch)

	noBids := english
	noBids.HighestBidder = domain.ZeroAddress
	v = newAuctionView(noBids)
	require.Empty(t, v.HighestBidder)
	require.Equal(t, "100", v.MinNextBid)

	dutch := english
	dutch.Ref = domain.AuctionRef{Protocol: domain.ProtocolLinear, ID: 3}
	dutch.Dutch = &domain.DutchTerms{
		ReservedPrice: decimal.NewFromInt(20), Duration: 100 * time.Second,
	}
	v = newAuctionView(dutch)
	require.Empty(t, v.MinNextBid)
	require.NotNil(t, v.Dutch)
	require.Equal(t, int64(100), v.Dutch.Duration)
}

func TestParsePurpose(t *testing.T) {
	for _, p := range []string{"created", "bid", "watchlist"} {
		purpose, err := parsePurpose(p)
		require.NoError(t, err)
		require.Equal(t, p, string(purpose))
	}

	_, err := parsePurpose("favourites")
	require.Error(t, err)
}

func TestRefTokens(t *testing.T) {
	list := domain.ReferenceList{
		{Protocol: domain.ProtocolVickrey, ID: 1},
		{Protocol: domain.ProtocolAllPay, ID: 20},
	}
	require.Equal(t, []string{"vickrey:1", "allpay:20"}, refTokens(list))
}
