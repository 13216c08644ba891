package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

func TestNewAuctionService(t *testing.T) {
	ledger := &mockLedger{}

	for _, tag := range domain.AllProtocols() {
		svc, err := application.NewAuctionService(
			tag, contracts[tag], ledger, application.ScanConfig{}, nil,
		)
		require.NoError(t, err)
		require.Equal(t, tag, svc.Protocol())
	}

	_, err := application.NewAuctionService(
		domain.ProtocolUnknown, contracts[domain.ProtocolEnglish], ledger,
		application.ScanConfig{}, nil,
	)
	require.ErrorIs(t, err, domain.ErrUnsupportedProtocol)

	_, err = application.NewDutchService(
		domain.ProtocolEnglish, contracts[domain.ProtocolEnglish], ledger,
		application.ScanConfig{}, nil,
	)
	require.ErrorIs(t, err, domain.ErrUnsupportedProtocol)

	_, err = application.NewEnglishService("", ledger, application.ScanConfig{}, nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.ErrorIs(t, err, application.ErrContractNotConfigured)

	_, err = application.NewAllPayService(
		contracts[domain.ProtocolAllPay], nil, application.ScanConfig{}, nil,
	)
	require.ErrorIs(t, err, application.ErrLedgerNotConfigured)
}

func TestRegistry(t *testing.T) {
	ledger := &mockLedger{}
	newService := func(tag domain.ProtocolTag) application.AuctionService {
		svc, err := application.NewAuctionService(
			tag, contracts[tag], ledger, application.ScanConfig{}, nil,
		)
		require.NoError(t, err)
		return svc
	}

	registry, err := application.NewRegistry(
		newService(domain.ProtocolVickrey),
		newService(domain.ProtocolEnglish),
		newService(domain.ProtocolExponential),
	)
	require.NoError(t, err)
	require.Equal(t, []domain.ProtocolTag{
		domain.ProtocolEnglish, domain.ProtocolExponential, domain.ProtocolVickrey,
	}, registry.Protocols())

	for _, tag := range registry.Protocols() {
		svc, err := registry.Resolve(domain.AuctionRef{Protocol: tag, ID: 1})
		require.NoError(t, err)
		require.Equal(t, tag, svc.Protocol())
	}

	_, err = registry.Resolve(domain.AuctionRef{Protocol: domain.ProtocolAllPay, ID: 1})
	require.ErrorIs(t, err, domain.ErrUnsupportedProtocol)

	_, err = registry.ServiceFor(domain.ProtocolUnknown)
	require.ErrorIs(t, err, domain.ErrUnsupportedProtocol)

	_, err = application.NewRegistry(
		newService(domain.ProtocolEnglish), newService(domain.ProtocolEnglish),
	)
	require.ErrorIs(t, err, application.ErrDuplicateService)
}
