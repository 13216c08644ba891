package application_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/application"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	dbbolt "github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/bolt"
)

func TestConfig(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		cfg := &application.Config{
			DBType: application.DBInMemory,
			Ledger: &mockLedger{},
			Contracts: map[domain.ProtocolTag]string{
				domain.ProtocolEnglish: contracts[domain.ProtocolEnglish],
				domain.ProtocolLinear:  contracts[domain.ProtocolLinear],
			},
			ChainID: chainID,
		}
		require.NoError(t, cfg.Validate())
		defer cfg.Close()

		require.Equal(t, []domain.ProtocolTag{
			domain.ProtocolEnglish, domain.ProtocolLinear,
		}, cfg.Registry().Protocols())
		require.NotNil(t, cfg.TrackerService())
		require.NotNil(t, cfg.BidService())
		require.Nil(t, cfg.VickreyService())
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  *application.Config
			err  error
		}{
			{
				"unknown db type",
				&application.Config{
					DBType:    "pg",
					Ledger:    &mockLedger{},
					Contracts: contracts,
				},
				domain.ErrConfiguration,
			},
			{
				"missing ledger",
				&application.Config{DBType: application.DBInMemory, Contracts: contracts},
				application.ErrLedgerNotConfigured,
			},
			{
				"no contracts",
				&application.Config{DBType: application.DBInMemory, Ledger: &mockLedger{}},
				application.ErrContractNotConfigured,
			},
			{
				"malformed contract",
				&application.Config{
					DBType: application.DBInMemory,
					Ledger: &mockLedger{},
					Contracts: map[domain.ProtocolTag]string{
						domain.ProtocolVickrey: "0x1234",
					},
				},
				application.ErrContractNotConfigured,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.cfg.Validate()
				require.ErrorIs(t, err, tt.err)
				require.ErrorIs(t, err, domain.ErrConfiguration)
			})
		}
	})

	t.Run("badger with encrypted secrets", func(t *testing.T) {
		datadir := t.TempDir()
		newConfig := func(password string) *application.Config {
			return &application.Config{
				DBType:          application.DBBadger,
				Datadir:         datadir,
				SecretsPassword: password,
				Ledger:          &mockLedger{},
				Contracts:       contracts,
				ChainID:         chainID,
			}
		}

		cfg := newConfig("s3cr3t")
		require.NoError(t, cfg.Validate())
		require.NotNil(t, cfg.VickreyService())

		secret, err := domain.NewCommitmentSecret(
			vickreyRef, bidderAddr, decimal.NewFromInt(1), "abc123xy", time.Unix(1500, 0),
		)
		require.NoError(t, err)
		require.NoError(t, cfg.RepoManager().SecretRepository().SaveSecret(ctx, *secret))
		require.NoError(t, cfg.TrackerService().Watch(ctx, bidderAddr, vickreyRef))
		cfg.Close()

		err = newConfig("wrong").Validate()
		require.ErrorIs(t, err, dbbolt.ErrInvalidPassword)

		cfg = newConfig("s3cr3t")
		require.NoError(t, cfg.Validate())
		defer cfg.Close()

		stored, err := cfg.VickreyService().GetSecret(ctx, vickreyRef, bidderAddr)
		require.NoError(t, err)
		require.Equal(t, "abc123xy", stored.Salt)

		watched, err := cfg.TrackerService().IsWatched(ctx, bidderAddr, vickreyRef)
		require.NoError(t, err)
		require.True(t, watched)
	})

	t.Run("badger without password keeps secrets in memory", func(t *testing.T) {
		cfg := &application.Config{
			DBType:    application.DBBadger,
			Datadir:   t.TempDir(),
			Ledger:    &mockLedger{},
			Contracts: contracts,
		}
		require.NoError(t, cfg.Validate())
		defer cfg.Close()

		pending, err := cfg.VickreyService().PendingSecrets(ctx, bidderAddr)
		require.NoError(t, err)
		require.Empty(t, pending)
	})
}
