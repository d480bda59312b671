// Package testutil provides testing utilities for sdmgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a thread-safe seeded RNG plus helpers for generating
// random data vectors and binary addresses.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	vec := make([]float32, 128)
//	rng.FillUniform(vec)       // uniform [0, 1)
//	addr := rng.Address(1000)  // random binary address
//
// # Noisy Queries
//
//	noisy := rng.FlipBits(addr, 25) // 25 bits away from addr
package testutil
