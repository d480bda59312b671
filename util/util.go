package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
// It is not safe for concurrent use; callers that share an RNG across
// goroutines must serialize access (testutil.RNG is the locked variant).
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float32 returns a pseudo-random number in [0, 1).
func (r *RNG) Float32() float32 {
	return r.rand.Float32()
}

// FillUniform fills dst with independent uniform draws in [0, 1).
func (r *RNG) FillUniform(dst []float32) {
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates num vectors of the given dimension, each element
// drawn uniformly from [0, 1).
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	vectors := make([][]float32, num)
	for i := range vectors {
		vectors[i] = make([]float32, dimensions)
		r.FillUniform(vectors[i])
	}

	return vectors
}
