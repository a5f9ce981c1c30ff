package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDs(t *testing.T) {
	ids := SequentialIDs(5)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, ids)
}

func TestShuffledIDs(t *testing.T) {
	rng := NewRNG(4711)

	ids := rng.ShuffledIDs(100)
	assert.Len(t, ids, 100)

	// A shuffle is still a permutation of the dense range.
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	assert.Equal(t, SequentialIDs(100), sorted)
}

func TestUniformIDs(t *testing.T) {
	rng := NewRNG(4711)

	const max = uint64(1 << 20)
	ids := rng.UniformIDs(1000, max)
	assert.Len(t, ids, 1000)
	for _, id := range ids {
		assert.LessOrEqual(t, id, max)
	}
}

func TestZipfIDs(t *testing.T) {
	rng := NewRNG(4711)

	const max = uint64(1 << 20)
	ids := rng.ZipfIDs(1000, max)
	assert.Len(t, ids, 1000)

	hits := make(map[uint64]int, len(ids))
	for _, id := range ids {
		assert.LessOrEqual(t, id, max)
		hits[id]++
	}

	// Zipf concentrates the draw on a few identifiers.
	assert.Less(t, len(hits), len(ids))
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(99)
	assert.Equal(t, int64(99), rng.Seed())

	first := rng.UniformIDs(10, 1<<30)
	rng.Reset()
	second := rng.UniformIDs(10, 1<<30)

	assert.Equal(t, first, second)
}

func TestRNG_Determinism(t *testing.T) {
	a := NewRNG(7).ZipfIDs(50, 1<<16)
	b := NewRNG(7).ZipfIDs(50, 1<<16)
	assert.Equal(t, a, b)
}
