package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
)

// SecretRepositoryImpl keeps commitment secrets for the lifetime of the
// process only.
type SecretRepositoryImpl struct {
	secrets map[string]domain.CommitmentSecret

	lock *sync.RWMutex
}

func NewSecretRepositoryImpl() *SecretRepositoryImpl {
	return &SecretRepositoryImpl{
		secrets: map[string]domain.CommitmentSecret{},
		lock:    &sync.RWMutex{},
	}
}

func (r *SecretRepositoryImpl) SaveSecret(
	_ context.Context, secret domain.CommitmentSecret,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	secret.Bidder = strings.ToLower(secret.Bidder)
	r.secrets[secret.Key()] = secret
	return nil
}

func (r *SecretRepositoryImpl) GetSecret(
	_ context.Context, ref domain.AuctionRef, bidder string,
) (*domain.CommitmentSecret, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	secret, ok := r.secrets[domain.SecretKey(ref, bidder)]
	if !ok {
		return nil, domain.ErrSecretNotFound
	}
	return &secret, nil
}

func (r *SecretRepositoryImpl) DeleteSecret(
	_ context.Context, ref domain.AuctionRef, bidder string,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.secrets, domain.SecretKey(ref, bidder))
	return nil
}

func (r *SecretRepositoryImpl) GetSecretsForBidder(
	_ context.Context, bidder string,
) ([]domain.CommitmentSecret, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	secrets := make([]domain.CommitmentSecret, 0)
	for _, s := range r.secrets {
		if domain.SameAddress(s.Bidder, bidder) {
			secrets = append(secrets, s)
		}
	}
	sort.Slice(secrets, func(i, j int) bool {
		if !secrets[i].CreatedAt.Equal(secrets[j].CreatedAt) {
			return secrets[i].CreatedAt.Before(secrets[j].CreatedAt)
		}
		return secrets[i].Key() < secrets[j].Key()
	})
	return secrets, nil
}

func (r *SecretRepositoryImpl) Close() {}
