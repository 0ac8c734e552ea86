// Package sampler implements uniform random sampling from a partitioned
// key-value store without a full scan.
//
// The primary path queries a secondary index ordered by a per-item random
// key: it draws a random pivot and reads a contiguous ring-range starting at
// the pivot, wrapping around past the end of the key space. When the index
// is not available (still backfilling, or absent) the engine degrades to a
// single forward pass over the whole partition with reservoir sampling, so
// memory stays bounded regardless of partition size. Either way the surviving
// candidate set is shuffled and truncated to the requested count.
package sampler

import (
	"context"
	"fmt"
)

// Op selects which leg of the ring query a range read serves.
type Op int

const (
	// OpGE reads entries with randKey >= pivot, ascending.
	OpGE Op = iota
	// OpLT reads entries with randKey < pivot, ascending (the wraparound leg).
	OpLT
)

// Source is one sampling pool: a partition of the store plus its random-key
// index. Both reads are paginated; an empty token starts from the beginning
// and an empty returned token means the read is exhausted.
type Source[T any] interface {
	// RingRange reads up to limit index entries on one side of the pivot,
	// ascending by random key.
	RingRange(ctx context.Context, op Op, pivot int64, limit int, token string) ([]T, string, error)

	// Page reads the next page of the partition in storage order, for the
	// full-scan fallback.
	Page(ctx context.Context, size int, token string) ([]T, string, error)
}

// Config carries the per-pool constants and capabilities of an Engine.
type Config struct {
	// MaxLimit bounds the requested sample size; requests are clamped to
	// [1, MaxLimit]. Defaults to 50.
	MaxLimit int

	// CandidateLimit is the size of the candidate window gathered before
	// filtering and final selection. When it exceeds the (clamped) request
	// limit, the engine over-fetches so a predicate has something to narrow.
	// Zero means the window equals the request limit.
	CandidateLimit int

	// PageSize is the page size of the full-scan fallback. Defaults to 100.
	PageSize int

	// Rand is the uniform randomness source. Defaults to a time-seeded one.
	Rand Rand

	// IndexUnavailable classifies a store error as "index not ready". Such an
	// error triggers the scan fallback instead of failing the request. When
	// nil, every error is fatal.
	IndexUnavailable func(error) bool

	// OnFallback, if set, is invoked once when the engine degrades to the
	// scan path because of a classified index error.
	OnFallback func(error)
}

// Engine samples items approximately uniformly from one Source. It holds no
// per-request state; a single Engine is safe for concurrent use.
type Engine[T any] struct {
	src Source[T]
	cfg Config
}

const (
	defaultMaxLimit = 50
	defaultPageSize = 100
)

// New builds an engine over src.
func New[T any](src Source[T], cfg Config) *Engine[T] {
	if cfg.MaxLimit < 1 {
		cfg.MaxLimit = defaultMaxLimit
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Rand == nil {
		cfg.Rand = NewRand()
	}
	return &Engine[T]{src: src, cfg: cfg}
}

// Sample returns up to limit items drawn approximately uniformly from the
// pool. limit is clamped to [1, MaxLimit]. keep, when non-nil, narrows the
// already-bounded candidate window before final selection; it is deliberately
// not pushed into the store query, so a filtered request may return fewer
// items than exist in the whole partition. An empty result is a normal
// outcome, not an error.
func (e *Engine[T]) Sample(ctx context.Context, limit int, keep func(T) bool) ([]T, error) {
	limit = e.clamp(limit)
	window := limit
	if e.cfg.CandidateLimit > window {
		window = e.cfg.CandidateLimit
	}

	candidates, err := e.ringCandidates(ctx, window)
	if err != nil {
		if e.cfg.IndexUnavailable == nil || !e.cfg.IndexUnavailable(err) {
			return nil, err
		}
		if e.cfg.OnFallback != nil {
			e.cfg.OnFallback(err)
		}
		candidates = nil
	}

	// An empty window from a healthy index is re-checked by the scan path,
	// which is authoritative about emptiness.
	if len(candidates) == 0 {
		candidates, err = e.scanCandidates(ctx, window)
		if err != nil {
			return nil, err
		}
	}

	if keep != nil {
		kept := candidates[:0]
		for _, item := range candidates {
			if keep(item) {
				kept = append(kept, item)
			}
		}
		candidates = kept
	}

	e.cfg.Rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (e *Engine[T]) clamp(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// ringCandidates gathers up to limit items around a random pivot: first the
// entries at or above the pivot, then, if the partition ran out before the
// limit was met, the wraparound below it.
func (e *Engine[T]) ringCandidates(ctx context.Context, limit int) ([]T, error) {
	pivot := NewRandKey(e.cfg.Rand)

	items, err := e.ringLeg(ctx, OpGE, pivot, limit)
	if err != nil {
		return nil, err
	}
	if len(items) < limit {
		wrap, err := e.ringLeg(ctx, OpLT, pivot, limit-len(items))
		if err != nil {
			return nil, err
		}
		items = append(items, wrap...)
	}
	return items, nil
}

func (e *Engine[T]) ringLeg(ctx context.Context, op Op, pivot int64, limit int) ([]T, error) {
	var items []T
	token := ""
	for len(items) < limit {
		page, next, err := e.src.RingRange(ctx, op, pivot, limit-len(items), token)
		if err != nil {
			return nil, fmt.Errorf("ring range: %w", err)
		}
		items = append(items, page...)
		token = next
		if token == "" {
			break
		}
	}
	return items, nil
}

// scanCandidates walks the whole partition once and reservoir-samples k items
// from it, so the fallback stays O(k) in memory however large the partition.
func (e *Engine[T]) scanCandidates(ctx context.Context, k int) ([]T, error) {
	res := NewReservoir[T](k, e.cfg.Rand)
	token := ""
	for {
		page, next, err := e.src.Page(ctx, e.cfg.PageSize, token)
		if err != nil {
			return nil, fmt.Errorf("partition scan: %w", err)
		}
		for _, item := range page {
			res.Observe(item)
		}
		token = next
		if token == "" {
			break
		}
	}
	return res.Items(), nil
}
