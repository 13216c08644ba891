package domain

import "context"

// SecretRepository persists commitment secrets on the bidder side.
type SecretRepository interface {
	// SaveSecret stores the secret, overwriting any previous one for the same
	// auction and bidder.
	SaveSecret(ctx context.Context, secret CommitmentSecret) error
	// GetSecret returns ErrSecretNotFound if nothing is stored.
	GetSecret(ctx context.Context, ref AuctionRef, bidder string) (*CommitmentSecret, error)
	// DeleteSecret erases the secret, if any.
	DeleteSecret(ctx context.Context, ref AuctionRef, bidder string) error
	// GetSecretsForBidder returns all secrets stored for bidder.
	GetSecretsForBidder(ctx context.Context, bidder string) ([]CommitmentSecret, error)
	Close()
}
