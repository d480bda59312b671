// Package store implements the sparse distributed memory itself: a fixed
// population of hard locations, each holding an immutable random binary
// address and a mutable float32 accumulator vector of the same width.
//
// Writes superimpose a data vector onto every location whose address lies
// within the critical distance of the write address; reads average the
// accumulators of the locations within the critical distance of the read
// address. Both operations scan the whole population, so similar addresses
// activate overlapping location sets and recall degrades gracefully with
// address noise.
//
// The address plane never changes after construction. Accumulators mutate
// in place under a read-write lock, so any number of reads may run
// concurrently with each other.
package store
