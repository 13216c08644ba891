package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// TrackerService keeps the per-account reference lists of the auctions
// created, bid on and watchlisted on a chain.
type TrackerService interface {
	Watch(ctx context.Context, account string, ref domain.AuctionRef) error
	Unwatch(ctx context.Context, account string, ref domain.AuctionRef) error
	IsWatched(ctx context.Context, account string, ref domain.AuctionRef) (bool, error)
	TrackBid(ctx context.Context, account string, ref domain.AuctionRef) error
	TrackCreated(ctx context.Context, account string, ref domain.AuctionRef) error
	List(
		ctx context.Context, account string, purpose domain.ListPurpose,
	) (domain.ReferenceList, error)
	// ListTracked returns the current state of every auction of the list.
	// Auctions failing to load are dropped from the result and logged.
	ListTracked(
		ctx context.Context, account string, purpose domain.ListPurpose,
	) ([]domain.AuctionState, error)
	// SyncCreated scans every protocol for auctions created by account and
	// adds them to its created list. It returns the refs newly added.
	SyncCreated(
		ctx context.Context, account string, rangeHint *domain.BlockRange,
	) ([]domain.AuctionRef, error)
}

type trackerService struct {
	repo     domain.ReferenceListRepository
	registry *Registry
	chainID  uint64
}

func NewTrackerService(
	repo domain.ReferenceListRepository, registry *Registry, chainID uint64,
) TrackerService {
	return &trackerService{repo, registry, chainID}
}

func (t *trackerService) key(
	account string, purpose domain.ListPurpose,
) (string, error) {
	if !domain.IsValidAddress(account) {
		return "", domain.ErrInvalidAddress
	}
	switch purpose {
	case domain.ListCreated, domain.ListBidOn, domain.ListWatchlist:
		return domain.ListKey(t.chainID, account, purpose), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownListPurpose, purpose)
	}
}

func (t *trackerService) add(
	ctx context.Context, account string, purpose domain.ListPurpose, ref domain.AuctionRef,
) error {
	if !ref.Protocol.IsValid() {
		return domain.ErrUnsupportedProtocol
	}
	key, err := t.key(account, purpose)
	if err != nil {
		return err
	}
	return t.repo.Append(ctx, key, ref)
}

func (t *trackerService) Watch(
	ctx context.Context, account string, ref domain.AuctionRef,
) error {
	return t.add(ctx, account, domain.ListWatchlist, ref)
}

func (t *trackerService) Unwatch(
	ctx context.Context, account string, ref domain.AuctionRef,
) error {
	key, err := t.key(account, domain.ListWatchlist)
	if err != nil {
		return err
	}
	return t.repo.Remove(ctx, key, ref)
}

func (t *trackerService) IsWatched(
	ctx context.Context, account string, ref domain.AuctionRef,
) (bool, error) {
	key, err := t.key(account, domain.ListWatchlist)
	if err != nil {
		return false, err
	}
	return t.repo.IsPresent(ctx, key, ref)
}

func (t *trackerService) TrackBid(
	ctx context.Context, account string, ref domain.AuctionRef,
) error {
	return t.add(ctx, account, domain.ListBidOn, ref)
}

func (t *trackerService) TrackCreated(
	ctx context.Context, account string, ref domain.AuctionRef,
) error {
	return t.add(ctx, account, domain.ListCreated, ref)
}

func (t *trackerService) List(
	ctx context.Context, account string, purpose domain.ListPurpose,
) (domain.ReferenceList, error) {
	key, err := t.key(account, purpose)
	if err != nil {
		return nil, err
	}
	return t.repo.Load(ctx, key)
}

func (t *trackerService) ListTracked(
	ctx context.Context, account string, purpose domain.ListPurpose,
) ([]domain.AuctionState, error) {
	list, err := t.List(ctx, account, purpose)
	if err != nil {
		return nil, err
	}

	return fetchAll(ctx, list, func(
		ctx context.Context, ref domain.AuctionRef,
	) (*domain.AuctionState, error) {
		svc, err := t.registry.Resolve(ref)
		if err != nil {
			return nil, err
		}
		return svc.GetAuction(ctx, ref)
	})
}

func (t *trackerService) SyncCreated(
	ctx context.Context, account string, rangeHint *domain.BlockRange,
) ([]domain.AuctionRef, error) {
	key, err := t.key(account, domain.ListCreated)
	if err != nil {
		return nil, err
	}

	protocols := t.registry.Protocols()
	found := make([][]domain.AuctionRef, len(protocols))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range protocols {
		i, tag := i, tag
		g.Go(func() error {
			svc, err := t.registry.ServiceFor(tag)
			if err != nil {
				return err
			}
			auctions, err := svc.GetAllAuctions(gctx, rangeHint)
			if err != nil {
				return fmt.Errorf("discovering %s auctions: %w", tag, err)
			}
			for _, a := range auctions {
				if domain.SameAddress(a.Auctioneer, account) {
					found[i] = append(found[i], a.Ref)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var added []domain.AuctionRef
	if err := t.repo.UpdateList(ctx, key, func(
		list domain.ReferenceList,
	) (domain.ReferenceList, error) {
		added = added[:0]
		for _, refs := range found {
			for _, ref := range refs {
				var changed bool
				if list, changed = list.Append(ref); changed {
					added = append(added, ref)
				}
			}
		}
		return list, nil
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": account,
		"added":   len(added),
	}).Debug("synced created auctions")
	return added, nil
}
