package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/sdmgo/bitvec"
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
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
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

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// Address generates a random binary address of the given dimension.
// Each bit is set with probability 0.5.
func (r *RNG) Address(dimensions int) bitvec.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := bitvec.New(dimensions)
	for i := range dimensions {
		if r.rand.Float32() > 0.5 {
			v.SetBit(i, true)
		}
	}

	return v
}

// Addresses generates num random binary addresses of the given dimension.
func (r *RNG) Addresses(num int, dimensions int) []bitvec.Vector {
	addrs := make([]bitvec.Vector, num)
	for i := range addrs {
		addrs[i] = r.Address(dimensions)
	}

	return addrs
}

// FlipBits returns a copy of v with k distinct randomly chosen bits flipped.
// Useful for building noisy query addresses at a known Hamming distance.
func (r *RNG) FlipBits(v bitvec.Vector, k int) bitvec.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := v.Clone()
	if k <= 0 {
		return out
	}
	if k > v.Len() {
		k = v.Len()
	}

	flipped := make(map[int]struct{}, k)
	for len(flipped) < k {
		i := r.rand.Intn(v.Len())
		if _, ok := flipped[i]; ok {
			continue
		}
		flipped[i] = struct{}{}
		out.Flip(i)
	}

	return out
}
