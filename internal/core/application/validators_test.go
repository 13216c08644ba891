package application_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/pkg/commitment"
)

func TestValidateRequests(t *testing.T) {
	ref := domain.AuctionRef{Protocol: domain.ProtocolEnglish, ID: 1}
	c, err := commitment.Hash(decimal.NewFromInt(1), "abc123xy")
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   interface{ Validate() error }
		valid bool
	}{
		{
			"valid bid",
			application.BidRequest{Ref: ref, Bidder: bidderAddr, Amount: decimal.NewFromInt(1)},
			true,
		},
		{
			"bid with unknown protocol",
			application.BidRequest{Bidder: bidderAddr, Amount: decimal.NewFromInt(1)},
			false,
		},
		{
			"bid with malformed bidder",
			application.BidRequest{Ref: ref, Bidder: "0x1234", Amount: decimal.NewFromInt(1)},
			false,
		},
		{
			"zero bid",
			application.BidRequest{Ref: ref, Bidder: bidderAddr, Amount: decimal.Zero},
			false,
		},
		{
			"fractional bid",
			application.BidRequest{
				Ref: ref, Bidder: bidderAddr, Amount: decimal.RequireFromString("0.5"),
			},
			false,
		},
		{
			"valid commit",
			application.CommitRequest{Ref: ref, Bidder: bidderAddr, Commitment: c},
			true,
		},
		{
			"empty commitment",
			application.CommitRequest{Ref: ref, Bidder: bidderAddr},
			false,
		},
		{
			"valid reveal",
			application.RevealRequest{
				Ref: ref, Bidder: bidderAddr, Amount: decimal.NewFromInt(1), Salt: "abc123xy",
			},
			true,
		},
		{
			"short salt",
			application.RevealRequest{
				Ref: ref, Bidder: bidderAddr, Amount: decimal.NewFromInt(1), Salt: "abc",
			},
			false,
		},
		{
			"valid withdraw",
			application.WithdrawRequest{Ref: ref, Account: sellerAddr},
			true,
		},
		{
			"withdraw without account",
			application.WithdrawRequest{Ref: ref},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}

func TestInvalidRequestsNeverReachTheLedger(t *testing.T) {
	for _, tag := range domain.AllProtocols() {
		svc, ledger, _ := newTestAuctionService(t, tag, application.ScanConfig{})
		ref := domain.AuctionRef{Protocol: tag, ID: 1}

		_, err := svc.Withdraw(ctx, application.WithdrawRequest{Ref: ref, Account: "me"})
		require.ErrorIs(t, err, application.ErrInvalidRequest)

		if tag != domain.ProtocolVickrey {
			_, err = svc.SubmitBid(ctx, application.BidRequest{
				Ref: ref, Bidder: bidderAddr, Amount: decimal.NewFromInt(-1),
			})
			require.ErrorIs(t, err, application.ErrInvalidRequest)
		}

		ledger.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything)
		ledger.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
	}
}
