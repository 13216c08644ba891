package dbbadger

import (
	"context"
	"sync"

	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// referenceList is the persisted form of a list. References are stored as
// tokens so that a corrupt entry can be skipped on load.
type referenceList struct {
	Key    string
	Tokens []string
}

type referenceListRepositoryImpl struct {
	store *badgerhold.Store

	// locks serializes the read-modify-write cycles per key.
	locks sync.Map
}

func NewReferenceListRepositoryImpl(
	store *badgerhold.Store,
) domain.ReferenceListRepository {
	return &referenceListRepositoryImpl{store: store}
}

func (r *referenceListRepositoryImpl) Load(
	ctx context.Context, key string,
) (domain.ReferenceList, error) {
	var list domain.ReferenceList
	err := r.store.Badger().View(func(tx *badger.Txn) error {
		var err error
		list, err = r.load(tx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referenceListRepositoryImpl) Append(
	ctx context.Context, key string, ref domain.AuctionRef,
) error {
	return r.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		list, _ = list.Append(ref)
		return list, nil
	})
}

func (r *referenceListRepositoryImpl) Remove(
	ctx context.Context, key string, ref domain.AuctionRef,
) error {
	return r.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		list, _ = list.Remove(ref)
		return list, nil
	})
}

func (r *referenceListRepositoryImpl) IsPresent(
	ctx context.Context, key string, ref domain.AuctionRef,
) (bool, error) {
	list, err := r.Load(ctx, key)
	if err != nil {
		return false, err
	}
	return list.Contains(ref), nil
}

func (r *referenceListRepositoryImpl) UpdateList(
	ctx context.Context, key string,
	updateFn func(list domain.ReferenceList) (domain.ReferenceList, error),
) error {
	mu := r.lock(key)
	mu.Lock()
	defer mu.Unlock()

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		list, err := r.load(tx, key)
		if err != nil {
			return err
		}

		updatedList, err := updateFn(list)
		if err != nil {
			return err
		}

		return r.store.TxUpsert(tx, key, referenceList{
			Key:    key,
			Tokens: updatedList.Tokens(),
		})
	})
}

func (r *referenceListRepositoryImpl) Close() {
	if err := r.store.Close(); err != nil {
		log.WithError(err).Warn("closing reference lists db")
	}
}

func (r *referenceListRepositoryImpl) lock(key string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (r *referenceListRepositoryImpl) load(
	tx *badger.Txn, key string,
) (domain.ReferenceList, error) {
	var stored referenceList
	if err := r.store.TxGet(tx, key, &stored); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ReferenceList{}, nil
		}
		return nil, err
	}

	list, errs := domain.DecodeReferenceList(stored.Tokens)
	for _, err := range errs {
		log.WithError(err).WithField("key", key).Warn(
			"skipping malformed reference list entry",
		)
	}
	return list, nil
}
