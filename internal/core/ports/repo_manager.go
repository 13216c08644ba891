package ports

import "github.com/tdex-network/tdex-auctions/internal/core/domain"

// RepoManager holds the repositories of the local stores.
type RepoManager interface {
	ReferenceListRepository() domain.ReferenceListRepository
	SecretRepository() domain.SecretRepository
	Close()
}
