package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// SequentialIDs returns the identifiers [0, n) in order: the densest
// workload a page table sees.
func SequentialIDs(n int) []uint64 {
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i)
	}
	return ids
}

// ShuffledIDs returns the identifiers [0, n) in random order.
// Locks only once per call (preferred over drawing in a loop).
func (r *RNG) ShuffledIDs(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = uint64(i)
	}
	r.rand.Shuffle(n, func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	return ids
}

// UniformIDs returns n identifiers drawn uniformly from [0, max].
func (r *RNG) UniformIDs(n int, max uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint64, n)
	for i := range ids {
		if max == ^uint64(0) {
			ids[i] = r.rand.Uint64()
			continue
		}
		ids[i] = r.rand.Uint64() % (max + 1)
	}

	return ids
}

// ZipfIDs returns n identifiers in [0, max] following a Zipf distribution,
// so a handful of hot identifiers dominates the workload.
func (r *RNG) ZipfIDs(n int, max uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	z := rand.NewZipf(r.rand, 1.1, 1, max)

	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = z.Uint64()
	}

	return ids
}
