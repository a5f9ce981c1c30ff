// Package testutil provides testing utilities for the page table.
//
// This package is intended for use in tests and benchmarks only. It provides
// seeded, reproducible page identifier workloads with the access skews a
// page table meets in practice.
//
// # Identifier Workloads
//
//	rng := testutil.NewRNG(seed)
//	ids := testutil.SequentialIDs(n)   // dense 0..n-1
//	ids = rng.ShuffledIDs(n)           // dense, random order
//	ids = rng.UniformIDs(n, max)       // sparse, uniform over [0, max]
//	ids = rng.ZipfIDs(n, max)          // hot-key skew
package testutil
