package inmemory

import (
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
)

type RepoManager struct {
	referenceListRepository domain.ReferenceListRepository
	secretRepository        domain.SecretRepository
}

// NewRepoManager returns a repo manager whose stores live as long as the
// process. Nothing survives a restart.
func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		referenceListRepository: NewReferenceListRepositoryImpl(),
		secretRepository:        NewSecretRepositoryImpl(),
	}
}

func (d *RepoManager) ReferenceListRepository() domain.ReferenceListRepository {
	return d.referenceListRepository
}

func (d *RepoManager) SecretRepository() domain.SecretRepository {
	return d.secretRepository
}

func (d *RepoManager) Close() {}
