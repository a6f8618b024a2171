// Package testutil provides testing utilities for typeindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides sources of distinct identities and a seeded, thread-safe RNG
// for shuffling work across goroutines.
//
// # Distinct Identities
//
//	objs := testutil.Objects(250)             // 250 live, distinct allocations
//	types := testutil.ArrayTypes(byteType, 250) // [1]byte ... [250]byte
//
// # Shuffling
//
//	rng := testutil.NewRNG(seed)
//	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
package testutil
