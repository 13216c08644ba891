package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const defaultFetchConcurrency = 8

// auctionBase holds what the protocol implementations share: the contract
// they talk to, the log scanner, and the transaction submitter.
type auctionBase struct {
	submitter

	protocol     domain.ProtocolTag
	contract     string
	scanner      *logScanner
	clock        ports.Clock
	createdEvent string
}

func newAuctionBase(
	protocol domain.ProtocolTag, contract string, ledger ports.Ledger,
	scan ScanConfig, clock ports.Clock, createdEvent string,
) (auctionBase, error) {
	if !domain.IsValidAddress(contract) {
		return auctionBase{}, &domain.ConfigurationError{
			Reason: fmt.Errorf("%w for %s", ErrContractNotConfigured, protocol),
		}
	}
	if ledger == nil {
		return auctionBase{}, &domain.ConfigurationError{Reason: ErrLedgerNotConfigured}
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return auctionBase{
		submitter:    submitter{ledger},
		protocol:     protocol,
		contract:     contract,
		scanner:      newLogScanner(ledger, scan),
		clock:        clock,
		createdEvent: createdEvent,
	}, nil
}

func (b auctionBase) Protocol() domain.ProtocolTag {
	return b.protocol
}

func (b auctionBase) Await(ctx context.Context, sub *Submission) (*Submission, error) {
	return b.await(ctx, sub)
}

func (b auctionBase) notApplicable(op string) error {
	return fmt.Errorf("%s on %s auctions: %w", op, b.protocol, domain.ErrNotApplicable)
}

func (b auctionBase) checkRef(ref domain.AuctionRef) error {
	if ref.Protocol != b.protocol {
		return fmt.Errorf(
			"%s dispatched to %s service: %w", ref, b.protocol, domain.ErrUnsupportedProtocol,
		)
	}
	return nil
}

func (b auctionBase) read(
	ctx context.Context, method string, out interface{}, args ...interface{},
) error {
	return b.ledger.Call(ctx, ports.ContractCall{
		Contract: b.contract,
		Method:   method,
		Args:     args,
	}, out)
}

func (b auctionBase) tx(from, method string, args ...interface{}) ports.TxRequest {
	return ports.TxRequest{
		From:     from,
		Contract: b.contract,
		Method:   method,
		Args:     args,
	}
}

func (b auctionBase) now() time.Time {
	return b.clock.Now()
}

// history scans the given bid events of an auction and merges them oldest
// first.
func (b auctionBase) history(
	ctx context.Context, ref domain.AuctionRef, rangeHint *domain.BlockRange,
	bidderField string, kinds map[string]domain.BidEventKind,
) ([]domain.BidEvent, error) {
	if err := b.checkRef(ref); err != nil {
		return nil, err
	}

	var events []domain.BidEvent
	for event, kind := range kinds {
		logs, err := b.scanner.scan(ctx, ports.LogFilter{
			Contract: b.contract,
			Event:    event,
			Topics:   auctionTopic(ref),
		}, rangeHint)
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			ev, err := toBidEvent(ref, kind, bidderField, l)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}

	domain.SortBidEvents(events)
	return events, nil
}

// discover returns the refs of the auctions created in the range, in
// discovery order.
func (b auctionBase) discover(
	ctx context.Context, rangeHint *domain.BlockRange,
) ([]domain.AuctionRef, error) {
	logs, err := b.scanner.scan(ctx, ports.LogFilter{
		Contract: b.contract,
		Event:    b.createdEvent,
	}, rangeHint)
	if err != nil {
		return nil, err
	}

	refs := make([]domain.AuctionRef, 0, len(logs))
	seen := make(map[uint64]struct{}, len(logs))
	for _, l := range logs {
		fields, err := decodeEvent(l)
		if err != nil {
			log.WithError(err).Warn("skipping malformed creation event")
			continue
		}
		id, err := fields.uint64(fieldAuctionID)
		if err != nil {
			log.WithError(err).Warn("skipping malformed creation event")
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, domain.AuctionRef{Protocol: b.protocol, ID: id})
	}
	return refs, nil
}

type fetchFunc func(ctx context.Context, ref domain.AuctionRef) (*domain.AuctionState, error)

// fetchAll loads the states of refs concurrently. Refs failing to load are
// dropped and logged, the others keep their relative order. The batch fails
// if ctx is done or if every ref failed on the transport: an unreachable
// ledger must not look like an empty list.
func fetchAll(
	ctx context.Context, refs []domain.AuctionRef, fetch fetchFunc,
) ([]domain.AuctionState, error) {
	states := make([]*domain.AuctionState, len(refs))
	errs := make([]error, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(defaultFetchConcurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			state, err := fetch(ctx, ref)
			if err != nil {
				errs[i] = err
				return nil
			}
			states[i] = state
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list := make([]domain.AuctionState, 0, len(refs))
	numOfTransportErrors := 0
	var lastErr error
	for i, s := range states {
		if s != nil {
			list = append(list, *s)
			continue
		}
		err := errs[i]
		if errors.Is(err, domain.ErrTransport) {
			numOfTransportErrors++
			lastErr = err
		}
		log.WithError(err).WithField("auction", refs[i].Token()).Warn(
			"dropping auction that failed to load",
		)
	}

	if len(refs) > 0 && numOfTransportErrors == len(refs) {
		return nil, fmt.Errorf(
			"loading %d auctions: all requests failed: %w", len(refs), lastErr,
		)
	}
	return list, nil
}

// getAll is the shared GetAllAuctions implementation.
func (b auctionBase) getAll(
	ctx context.Context, rangeHint *domain.BlockRange, fetch fetchFunc,
) ([]domain.AuctionState, error) {
	refs, err := b.discover(ctx, rangeHint)
	if err != nil {
		return nil, err
	}
	return fetchAll(ctx, refs, fetch)
}

// checkBiddable rejects bids an ascending auction would revert.
func checkBiddable(state *domain.AuctionState, now time.Time) error {
	if state.Ended {
		return &domain.PhaseViolationError{Op: "bid", Phase: domain.PhaseEnded.String()}
	}
	if !state.HasStarted(now) {
		return &domain.PhaseViolationError{Op: "bid", Phase: "not-started"}
	}
	if state.IsOver(now) {
		return &domain.PhaseViolationError{Op: "bid", Phase: "past deadline"}
	}
	return nil
}

// checkWithdrawable rejects settlements attempted before the end.
func checkWithdrawable(state *domain.AuctionState, now time.Time) error {
	if !state.IsOver(now) {
		return &domain.PhaseViolationError{Op: "withdraw", Phase: "open"}
	}
	return nil
}
