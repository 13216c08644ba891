package inmemory

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

// ReferenceListRepositoryImpl represents an in memory storage
type ReferenceListRepositoryImpl struct {
	lists map[string]domain.ReferenceList

	lock *sync.RWMutex
}

// NewReferenceListRepositoryImpl returns a new empty ReferenceListRepositoryImpl
func NewReferenceListRepositoryImpl() *ReferenceListRepositoryImpl {
	return &ReferenceListRepositoryImpl{
		lists: map[string]domain.ReferenceList{},
		lock:  &sync.RWMutex{},
	}
}

func (r *ReferenceListRepositoryImpl) Load(
	_ context.Context, key string,
) (domain.ReferenceList, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.load(key), nil
}

func (r *ReferenceListRepositoryImpl) Append(
	ctx context.Context, key string, ref domain.AuctionRef,
) error {
	return r.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		list, _ = list.Append(ref)
		return list, nil
	})
}

func (r *ReferenceListRepositoryImpl) Remove(
	ctx context.Context, key string, ref domain.AuctionRef,
) error {
	return r.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		list, _ = list.Remove(ref)
		return list, nil
	})
}

func (r *ReferenceListRepositoryImpl) IsPresent(
	_ context.Context, key string, ref domain.AuctionRef,
) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.lists[key].Contains(ref), nil
}

func (r *ReferenceListRepositoryImpl) UpdateList(
	_ context.Context, key string,
	updateFn func(list domain.ReferenceList) (domain.ReferenceList, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	list, err := updateFn(r.load(key))
	if err != nil {
		return err
	}

	stored := make(domain.ReferenceList, len(list))
	copy(stored, list)
	r.lists[key] = stored
	return nil
}

func (r *ReferenceListRepositoryImpl) Close() {}

// load returns a copy so that callers never alias the stored list.
func (r *ReferenceListRepositoryImpl) load(key string) domain.ReferenceList {
	stored := r.lists[key]
	list := make(domain.ReferenceList, len(stored))
	copy(list, stored)
	return list
}
