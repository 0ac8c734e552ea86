package sampler

// Reservoir holds a uniform random sample of up to k items from a stream of
// unknown length, using bounded memory (Vitter's Algorithm R):
//
//   - Warmup (seen < k): every item is appended.
//   - Steady state (seen >= k): the new item replaces a random slot with
//     probability k/seen.
//
// After the full stream has been observed, every item has been retained with
// probability k/seen.
type Reservoir[T any] struct {
	k     int
	seen  int64
	items []T
	rnd   Rand
}

// NewReservoir creates a reservoir with capacity k. k must be positive.
func NewReservoir[T any](k int, rnd Rand) *Reservoir[T] {
	if k < 1 {
		k = 1
	}
	return &Reservoir[T]{
		k:     k,
		items: make([]T, 0, k),
		rnd:   rnd,
	}
}

// Observe feeds one item from the stream into the reservoir.
func (r *Reservoir[T]) Observe(item T) {
	r.seen++
	if len(r.items) < r.k {
		r.items = append(r.items, item)
		return
	}
	if j := r.rnd.Int63n(r.seen); j < int64(r.k) {
		r.items[j] = item
	}
}

// Seen reports how many items have been observed so far.
func (r *Reservoir[T]) Seen() int64 { return r.seen }

// Items returns the current sample. The slice is owned by the reservoir;
// callers must not feed more items after using it.
func (r *Reservoir[T]) Items() []T { return r.items }
