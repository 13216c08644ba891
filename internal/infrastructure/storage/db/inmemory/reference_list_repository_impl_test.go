package inmemory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/infrastructure/storage/db/inmemory"
)

const account = "0x1111111111111111111111111111111111111111"

var (
	ctx  = context.Background()
	refA = domain.AuctionRef{Protocol: domain.ProtocolEnglish, ID: 1}
	refB = domain.AuctionRef{Protocol: domain.ProtocolVickrey, ID: 1}
)

func TestWatchlistScenario(t *testing.T) {
	repo := inmemory.NewReferenceListRepositoryImpl()
	key := domain.ListKey(1, account, domain.ListWatchlist)

	list, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, repo.Append(ctx, key, refA))
	require.NoError(t, repo.Append(ctx, key, refB))
	require.NoError(t, repo.Remove(ctx, key, refA))

	list, err = repo.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.ReferenceList{refB}, list)
}

func TestReferenceListIdempotence(t *testing.T) {
	repo := inmemory.NewReferenceListRepositoryImpl()
	key := domain.ListKey(1, account, domain.ListBidOn)

	require.NoError(t, repo.Append(ctx, key, refA))
	require.NoError(t, repo.Append(ctx, key, refA))

	list, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.ReferenceList{refA}, list)

	ok, err := repo.IsPresent(ctx, key, refA)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Remove(ctx, key, refA))
	require.NoError(t, repo.Remove(ctx, key, refA))

	ok, err = repo.IsPresent(ctx, key, refA)
	require.NoError(t, err)
	require.False(t, ok)

	// Keys are independent.
	ok, err = repo.IsPresent(ctx, domain.ListKey(2, account, domain.ListBidOn), refA)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReferenceListNoAliasing(t *testing.T) {
	repo := inmemory.NewReferenceListRepositoryImpl()
	key := "k"
	require.NoError(t, repo.Append(ctx, key, refA))

	list, err := repo.Load(ctx, key)
	require.NoError(t, err)
	list[0] = refB

	list, err = repo.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.ReferenceList{refA}, list)
}

func TestReferenceListFailedUpdate(t *testing.T) {
	repo := inmemory.NewReferenceListRepositoryImpl()
	key := "k"
	require.NoError(t, repo.Append(ctx, key, refA))

	errUpdate := errors.New("update failed")
	err := repo.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		return nil, errUpdate
	})
	require.ErrorIs(t, err, errUpdate)

	list, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Equal(t, domain.ReferenceList{refA}, list)
}

func TestReferenceListConcurrentAppends(t *testing.T) {
	repo := inmemory.NewReferenceListRepositoryImpl()
	key := "k"
	count := 100

	wg := &sync.WaitGroup{}
	wg.Add(count)
	for i := 0; i < count; i++ {
		ref := domain.AuctionRef{Protocol: domain.ProtocolAllPay, ID: uint64(i)}
		go func() {
			defer wg.Done()
			require.NoError(t, repo.Append(ctx, key, ref))
		}()
	}
	wg.Wait()

	list, err := repo.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, list, count)
}
