package domain

import "context"

// ReferenceListRepository persists reference lists under caller-chosen keys.
// Every mutation is an atomic read-modify-write of the whole list for a key.
type ReferenceListRepository interface {
	// Load returns the list stored under key, or an empty list if the key has
	// never been written.
	Load(ctx context.Context, key string) (ReferenceList, error)
	// Append adds ref at the end of the list, unless already present.
	Append(ctx context.Context, key string, ref AuctionRef) error
	// Remove removes ref from the list, if present.
	Remove(ctx context.Context, key string, ref AuctionRef) error
	// IsPresent returns whether ref is in the list.
	IsPresent(ctx context.Context, key string, ref AuctionRef) (bool, error)
	// UpdateList lets to commit an arbitrary change to the list of a key in a
	// transactional way.
	UpdateList(
		ctx context.Context, key string,
		updateFn func(list ReferenceList) (ReferenceList, error),
	) error
	Close()
}
