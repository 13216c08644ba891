package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-auctions/internal/core/domain"
	"github.com/tdex-network/tdex-auctions/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const (
	defaultScanChunkSize   = 5000
	defaultScanConcurrency = 4
)

// ScanConfig bounds the event log scans.
type ScanConfig struct {
	// FromBlock is the first block scanned when no range is given, usually
	// the deployment height of the auction contracts.
	FromBlock uint64
	// ChunkSize is the max number of blocks requested per log query.
	ChunkSize uint64
	// Concurrency is the max number of log queries in flight.
	Concurrency int
}

func (c ScanConfig) withDefaults() ScanConfig {
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultScanChunkSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultScanConcurrency
	}
	return c
}

type logScanner struct {
	ledger ports.Ledger
	cfg    ScanConfig
}

func newLogScanner(ledger ports.Ledger, cfg ScanConfig) *logScanner {
	return &logScanner{ledger, cfg.withDefaults()}
}

// resolveRange returns the range to scan, never past the chain tip. A nil
// hint means from the configured start block up to the tip. The returned
// bool is false if there is nothing to scan.
func (s *logScanner) resolveRange(
	ctx context.Context, hint *domain.BlockRange,
) (domain.BlockRange, bool, error) {
	r := domain.BlockRange{From: s.cfg.FromBlock, To: math.MaxUint64}
	if hint != nil {
		if hint.From > hint.To {
			return domain.BlockRange{}, false, &domain.ConfigurationError{
				Reason: fmt.Errorf("invalid block range %d-%d", hint.From, hint.To),
			}
		}
		r = *hint
	}

	tip, err := s.ledger.BlockNumber(ctx)
	if err != nil {
		return domain.BlockRange{}, false, fmt.Errorf("fetching chain tip: %w", err)
	}
	if tip < r.From {
		return domain.BlockRange{}, false, nil
	}
	if r.To > tip {
		r.To = tip
	}
	return r, true, nil
}

// scan queries the logs matching filter over the range split in chunks, with
// bounded concurrency. Chunks are produced on demand so at most Concurrency
// of them are alive at once. Results are merged oldest first. Any failing
// chunk fails the whole scan: a partial history would be silently incomplete.
func (s *logScanner) scan(
	ctx context.Context, filter ports.LogFilter, hint *domain.BlockRange,
) ([]ports.Log, error) {
	r, ok, err := s.resolveRange(ctx, hint)
	if err != nil || !ok {
		return nil, err
	}

	var (
		mu     sync.Mutex
		merged []ports.Log
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	it := r.Chunks(s.cfg.ChunkSize)
	for chunk, ok := it.Next(); ok && gctx.Err() == nil; chunk, ok = it.Next() {
		chunk := chunk
		g.Go(func() error {
			f := filter
			f.FromBlock, f.ToBlock = chunk.From, chunk.To
			logs, err := s.ledger.GetLogs(gctx, f)
			if err != nil {
				return fmt.Errorf(
					"scanning %s logs in blocks %d-%d: %w",
					filter.Event, chunk.From, chunk.To, err,
				)
			}
			mu.Lock()
			merged = append(merged, logs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].BlockNumber != merged[j].BlockNumber {
			return merged[i].BlockNumber < merged[j].BlockNumber
		}
		return merged[i].LogIndex < merged[j].LogIndex
	})
	return merged, nil
}
