package dbbolt_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	dbbolt "github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/bolt"
)

const (
	filename = "secrets.db"
	bidder   = "0x1111111111111111111111111111111111111111"
	other    = "0x2222222222222222222222222222222222222222"
	salt     = "abc123xy-very-recognizable-salt"
)

var (
	password = []byte("password")
	ctx      = context.Background()
	ref      = domain.AuctionRef{Protocol: domain.ProtocolVickrey, ID: 3}
)

func newSecret(t *testing.T, ref domain.AuctionRef, bidder string, amount int64) domain.CommitmentSecret {
	secret, err := domain.NewCommitmentSecret(
		ref, bidder, decimal.NewFromInt(amount), salt, time.Unix(1700000000+amount, 0),
	)
	require.NoError(t, err)
	return *secret
}

func TestSecretRepository(t *testing.T) {
	datadir := t.TempDir()

	repo, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, password)
	require.NoError(t, err)

	_, err = repo.GetSecret(ctx, ref, bidder)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	secret := newSecret(t, ref, bidder, 1500)
	require.NoError(t, repo.SaveSecret(ctx, secret))

	got, err := repo.GetSecret(ctx, ref, bidder)
	require.NoError(t, err)
	require.Equal(t, secret.Commitment, got.Commitment)
	require.Equal(t, secret.Salt, got.Salt)
	require.True(t, secret.Amount.Equal(got.Amount))
	require.True(t, secret.CreatedAt.Equal(got.CreatedAt))
	require.False(t, got.Confirmed)

	// A new commit overwrites the previous secret of the same pair.
	replaced := newSecret(t, ref, bidder, 1600)
	replaced.Confirmed = true
	require.NoError(t, repo.SaveSecret(ctx, replaced))

	got, err = repo.GetSecret(ctx, ref, bidder)
	require.NoError(t, err)
	require.Equal(t, replaced.Commitment, got.Commitment)
	require.True(t, got.Confirmed)

	require.NoError(t, repo.SaveSecret(ctx, newSecret(t, ref, other, 10)))
	otherRef := domain.AuctionRef{Protocol: domain.ProtocolVickrey, ID: 4}
	require.NoError(t, repo.SaveSecret(ctx, newSecret(t, otherRef, bidder, 20)))

	secrets, err := repo.GetSecretsForBidder(ctx, bidder)
	require.NoError(t, err)
	require.Len(t, secrets, 2)
	require.Equal(t, otherRef, secrets[0].Ref)
	require.Equal(t, ref, secrets[1].Ref)

	require.NoError(t, repo.DeleteSecret(ctx, ref, bidder))
	_, err = repo.GetSecret(ctx, ref, bidder)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	// Deleting an absent secret is a no-op.
	require.NoError(t, repo.DeleteSecret(ctx, ref, bidder))

	repo.Close()
}

func TestSecretRepositoryReopen(t *testing.T) {
	datadir := t.TempDir()

	repo, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, password)
	require.NoError(t, err)
	secret := newSecret(t, ref, bidder, 1500)
	require.NoError(t, repo.SaveSecret(ctx, secret))
	repo.Close()

	_, err = repo.GetSecret(ctx, ref, bidder)
	require.ErrorIs(t, err, dbbolt.ErrStoreClosed)

	t.Run("wrong password", func(t *testing.T) {
		_, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, []byte("wrong"))
		require.ErrorIs(t, err, dbbolt.ErrInvalidPassword)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, nil)
		require.ErrorIs(t, err, dbbolt.ErrPasswordRequired)
	})

	t.Run("survives restart", func(t *testing.T) {
		repo, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, password)
		require.NoError(t, err)
		defer repo.Close()

		got, err := repo.GetSecret(ctx, ref, bidder)
		require.NoError(t, err)
		require.Equal(t, secret.Commitment, got.Commitment)
		require.True(t, got.Opens(secret.Commitment))
	})
}

func TestSecretRepositoryEncryptsAtRest(t *testing.T) {
	datadir := t.TempDir()

	repo, err := dbbolt.NewSecretRepositoryImpl(datadir, filename, password)
	require.NoError(t, err)
	require.NoError(t, repo.SaveSecret(ctx, newSecret(t, ref, bidder, 1500)))
	repo.Close()

	raw, err := os.ReadFile(filepath.Join(datadir, filename))
	require.NoError(t, err)
	require.False(t, bytes.Contains(raw, []byte(salt)))
}
