package sampler

import (
	"math/rand"
	"sync"
	"time"
)

// RandKeyMax is the upper bound of the per-item random key range [1, RandKeyMax].
const RandKeyMax = 1_000_000_000

// Rand is the uniform randomness capability the engine depends on. It is
// injected so tests can seed deterministically; production code must use a
// time-seeded source.
type Rand interface {
	Int63n(n int64) int64
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRand returns a thread-safe, time-seeded Rand.
func NewRand() Rand {
	return &lockedRand{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRand returns a thread-safe Rand with a fixed seed, for tests only.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int63n(n)
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	if n <= 1 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

// NewRandKey draws a random key uniformly from [1, RandKeyMax]. Keys are
// assigned once when an item is created and stay fixed thereafter.
func NewRandKey(rnd Rand) int64 {
	return 1 + rnd.Int63n(RandKeyMax)
}
