// Package simd provides the vector kernels used by the memory scan.
//
// # Operations
//
//   - Accumulate: AddInPlace, DivideInPlace
//   - Distance: HammingWords over packed uint64 words
//   - Batch: HammingBatch over a flattened address plane
//
// Kernels are held in replaceable function variables with portable Go
// fallbacks, so platform-specific implementations can be swapped in without
// touching call sites.
package simd
