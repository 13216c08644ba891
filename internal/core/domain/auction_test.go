package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/pricecurve"
)

const bidder = "0x1111111111111111111111111111111111111111"

func TestMinNextBid(t *testing.T) {
	tests := []struct {
		name  string
		state domain.AuctionState
		want  decimal.Decimal
	}{
		{
			name: "no bids",
			state: domain.AuctionState{
				StartingPrice: decimal.NewFromInt(100),
				Increment:     domain.BidIncrement{Value: decimal.NewFromInt(10)},
			},
			want: decimal.NewFromInt(100),
		},
		{
			name: "absolute increment",
			state: domain.AuctionState{
				StartingPrice: decimal.NewFromInt(100),
				CurrentPrice:  decimal.NewFromInt(150),
				HighestBidder: bidder,
				Increment:     domain.BidIncrement{Value: decimal.NewFromInt(10)},
			},
			want: decimal.NewFromInt(160),
		},
		{
			name: "basis points increment rounds up",
			state: domain.AuctionState{
				StartingPrice: decimal.NewFromInt(100),
				CurrentPrice:  decimal.NewFromInt(1001),
				HighestBidder: bidder,
				Increment: domain.BidIncrement{
					Kind: domain.IncrementBasisPoints, Value: decimal.NewFromInt(500),
				},
			},
			want: decimal.NewFromInt(1052),
		},
		{
			name: "zero address means no bids",
			state: domain.AuctionState{
				StartingPrice: decimal.NewFromInt(100),
				CurrentPrice:  decimal.NewFromInt(0),
				HighestBidder: domain.ZeroAddress,
				Increment:     domain.BidIncrement{Value: decimal.NewFromInt(10)},
			},
			want: decimal.NewFromInt(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.want.Equal(tt.state.MinNextBid()), "got %s", tt.state.MinNextBid())
		})
	}
}

func TestAuctionStateIsOver(t *testing.T) {
	deadline := time.Unix(1000, 0)
	state := domain.AuctionState{StartAt: time.Unix(0, 0), Deadline: deadline}

	require.False(t, state.IsOver(deadline.Add(-time.Second)))
	require.True(t, state.IsOver(deadline))
	require.True(t, state.HasStarted(time.Unix(0, 0)))
	require.False(t, state.HasStarted(time.Unix(-1, 0)))

	state.Ended = true
	require.True(t, state.IsOver(time.Unix(1, 0)))
}

func TestParseAmount(t *testing.T) {
	wei, err := domain.ParseAmount("1.5", domain.NativeDecimals)
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000", wei.String())
	require.Equal(t, "1.5", domain.FormatAmount(wei, domain.NativeDecimals))

	_, err = domain.ParseAmount("-1", domain.NativeDecimals)
	require.Error(t, err)
	_, err = domain.ParseAmount("0.0000000000000000001", domain.NativeDecimals)
	require.Error(t, err)
	_, err = domain.ParseAmount("one", domain.NativeDecimals)
	require.Error(t, err)
}

func TestNewCommitmentSecret(t *testing.T) {
	amount, _ := domain.ParseAmount("1.5", domain.NativeDecimals)
	now := time.Unix(10, 0)

	secret, err := domain.NewCommitmentSecret(refB, "0xAbCdEf0000000000000000000000000000000001", amount, "abc123xy", now)
	require.NoError(t, err)
	require.Equal(t, "0xabcdef0000000000000000000000000000000001", secret.Bidder)
	require.Equal(t, domain.SecretKey(refB, "0xABCDEF0000000000000000000000000000000001"), secret.Key())
	require.True(t, secret.Opens(secret.Commitment))

	other, err := domain.NewCommitmentSecret(refB, bidder, amount.Add(decimal.NewFromInt(1)), "abc123xy", now)
	require.NoError(t, err)
	require.False(t, secret.Opens(other.Commitment))

	_, err = domain.NewCommitmentSecret(refB, "nope", amount, "abc123xy", now)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestInvalidPriceCurveIsConfigurationError(t *testing.T) {
	curve, err := pricecurve.NewCurve(pricecurve.Params{
		StartPrice:    decimal.NewFromInt(2),
		ReservedPrice: decimal.NewFromInt(10),
		Duration:      time.Minute,
		Shape:         pricecurve.Linear,
	})
	require.Nil(t, curve)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.ErrorIs(t, err, pricecurve.ErrReserveAboveStart)

	wrapped := &domain.ConfigurationError{Reason: err}
	require.ErrorIs(t, wrapped, domain.ErrConfiguration)
	require.ErrorIs(t, wrapped, pricecurve.ErrReserveAboveStart)
}
