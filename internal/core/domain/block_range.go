package domain

import (
	"errors"
	"math"
)

// BlockRange is an inclusive range of ledger blocks to scan for events.
type BlockRange struct {
	From uint64
	To   uint64
}

// NewBlockRange returns a range after checking its bounds.
func NewBlockRange(from, to uint64) (BlockRange, error) {
	if from > to {
		return BlockRange{}, &ConfigurationError{
			errors.New("block range start must not be after its end"),
		}
	}
	return BlockRange{from, to}, nil
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	if r.From > r.To {
		return 0
	}
	return r.To - r.From + 1
}

// Chunks splits the range in consecutive sub-ranges of at most size blocks.
// A zero size yields the whole range as single chunk.
func (r BlockRange) Chunks(size uint64) *RangeIterator {
	return &RangeIterator{r: r, size: size, next: r.From, done: r.From > r.To}
}

// RangeIterator lazily yields the sub-ranges of a BlockRange in order. It is
// finite and can be restarted with Reset.
type RangeIterator struct {
	r    BlockRange
	size uint64
	next uint64
	done bool
}

// Next returns the next sub-range and false once the range is exhausted.
func (it *RangeIterator) Next() (BlockRange, bool) {
	if it.done {
		return BlockRange{}, false
	}

	from := it.next
	to := it.r.To
	if it.size > 0 && it.size-1 < to-from {
		to = from + it.size - 1
	}

	if to == it.r.To || to == math.MaxUint64 {
		it.done = true
	} else {
		it.next = to + 1
	}
	return BlockRange{from, to}, true
}

// Reset rewinds the iterator to the first sub-range.
func (it *RangeIterator) Reset() {
	it.next = it.r.From
	it.done = it.r.From > it.r.To
}

// All drains the iterator into a slice.
func (it *RangeIterator) All() []BlockRange {
	var chunks []BlockRange
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		chunks = append(chunks, c)
	}
	return chunks
}
