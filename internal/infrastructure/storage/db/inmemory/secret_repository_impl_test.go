package inmemory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/inmemory"
)

func TestSecretRepository(t *testing.T) {
	repo := inmemory.NewSecretRepositoryImpl()

	_, err := repo.GetSecret(ctx, refB, account)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	secret, err := domain.NewCommitmentSecret(
		refB, account, decimal.NewFromInt(15), "abc123xy", time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSecret(ctx, *secret))

	got, err := repo.GetSecret(ctx, refB, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	require.Equal(t, *secret, *got)

	secrets, err := repo.GetSecretsForBidder(ctx, account)
	require.NoError(t, err)
	require.Len(t, secrets, 1)

	require.NoError(t, repo.DeleteSecret(ctx, refB, account))
	_, err = repo.GetSecret(ctx, refB, account)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	secrets, err = repo.GetSecretsForBidder(ctx, account)
	require.NoError(t, err)
	require.Empty(t, secrets)
}
