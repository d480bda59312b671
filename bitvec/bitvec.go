// Package bitvec provides fixed-length binary vectors packed into uint64
// words for fast Hamming distance computation.
//
// Bits are packed little-endian: bit i lives in word i/64 at position i%64.
// Unused bits in the final word are always zero, so word-wise operations
// never see stray tail bits.
package bitvec

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/hupe1980/sdmgo/internal/simd"
)

// DefaultThreshold is the cutoff used when deriving bits from real-valued
// samples in [0,1): values strictly greater than the threshold map to 1.
const DefaultThreshold float32 = 0.5

// ErrLengthMismatch is returned when two vectors of different lengths are
// compared. Vectors of different lengths have no defined Hamming distance.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("bitvec: length mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Vector is a fixed-length binary vector. The zero value is an empty vector.
//
// Vector is a small value type; copies share the packed backing words, like
// slices. Use Clone for an independent copy.
type Vector struct {
	words []uint64
	n     int
}

// WordsFor returns the number of uint64 words needed to hold n bits.
func WordsFor(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 63) / 64
}

// New returns an all-zero vector of n bits.
func New(n int) Vector {
	if n <= 0 {
		return Vector{}
	}
	return Vector{words: make([]uint64, WordsFor(n)), n: n}
}

// Ones returns an all-ones vector of n bits.
func Ones(n int) Vector {
	v := New(n)
	for i := range v.words {
		v.words[i] = ^uint64(0)
	}
	v.maskTail()
	return v
}

// FromBits builds a vector from 0/1 samples. Any non-zero sample sets the bit.
func FromBits(samples []uint8) Vector {
	v := New(len(samples))
	for i, b := range samples {
		if b != 0 {
			v.words[i/64] |= 1 << (i % 64)
		}
	}
	return v
}

// FromBools builds a vector from boolean samples.
func FromBools(samples []bool) Vector {
	v := New(len(samples))
	for i, b := range samples {
		if b {
			v.words[i/64] |= 1 << (i % 64)
		}
	}
	return v
}

// FromFloat32 derives a binary vector from real-valued samples: values
// strictly greater than threshold become 1, all others 0.
func FromFloat32(samples []float32, threshold float32) Vector {
	v := New(len(samples))
	for i, val := range samples {
		if val > threshold {
			v.words[i/64] |= 1 << (i % 64)
		}
	}
	return v
}

// FromWords wraps packed words as an n-bit vector. The slice is used
// directly, not copied. Unused tail bits are cleared.
func FromWords(words []uint64, n int) (Vector, error) {
	if len(words) != WordsFor(n) {
		return Vector{}, &ErrLengthMismatch{Expected: WordsFor(n), Actual: len(words)}
	}
	if n <= 0 {
		return Vector{}, nil
	}
	v := Vector{words: words, n: n}
	v.maskTail()
	return v, nil
}

// Parse builds a vector from a bit string as produced by String: one '0' or
// '1' per bit, bit 0 first.
func Parse(s string) (Vector, error) {
	v := New(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '1':
			v.words[i/64] |= 1 << (i % 64)
		case '0':
		default:
			return Vector{}, fmt.Errorf("bitvec: invalid character %q at position %d", s[i], i)
		}
	}
	return v, nil
}

func (v Vector) maskTail() {
	if v.n <= 0 || v.n%64 == 0 {
		return
	}
	v.words[len(v.words)-1] &= (1 << (v.n % 64)) - 1
}

// Len returns the number of bits in the vector.
func (v Vector) Len() int { return v.n }

// Words returns the packed backing words. The slice is shared with the
// vector; callers must treat it as read-only.
func (v Vector) Words() []uint64 { return v.words }

// Bit reports whether bit i is set. Panics if i is out of range.
func (v Vector) Bit(i int) bool {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: bit index %d out of range [0,%d)", i, v.n))
	}
	return v.words[i/64]&(1<<(i%64)) != 0
}

// SetBit sets bit i to b. Visible through every copy sharing the backing
// words. Panics if i is out of range.
func (v Vector) SetBit(i int, b bool) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: bit index %d out of range [0,%d)", i, v.n))
	}
	if b {
		v.words[i/64] |= 1 << (i % 64)
	} else {
		v.words[i/64] &^= 1 << (i % 64)
	}
}

// Flip inverts bit i. Panics if i is out of range.
func (v Vector) Flip(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("bitvec: bit index %d out of range [0,%d)", i, v.n))
	}
	v.words[i/64] ^= 1 << (i % 64)
}

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	if v.n <= 0 {
		return Vector{}
	}
	words := make([]uint64, len(v.words))
	copy(words, v.words)
	return Vector{words: words, n: v.n}
}

// OnesCount returns the number of set bits.
func (v Vector) OnesCount() int {
	var c int
	for _, w := range v.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// Equal reports whether two vectors have the same length and the same bits.
func (v Vector) Equal(o Vector) bool {
	if v.n != o.n {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

// String renders the vector as a bit string in index order (bit 0 first).
func (v Vector) String() string {
	var sb strings.Builder
	sb.Grow(v.n)
	for i := 0; i < v.n; i++ {
		if v.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Hamming returns the number of bit positions where a and b differ.
//
// Hamming(a, a) == 0 and Hamming(a, b) == Hamming(b, a) for all vectors.
// Comparing vectors of different lengths fails with ErrLengthMismatch.
func Hamming(a, b Vector) (int, error) {
	if a.n != b.n {
		return 0, &ErrLengthMismatch{Expected: a.n, Actual: b.n}
	}
	return simd.HammingWords(a.words, b.words), nil
}

// NormalizedHamming returns the Hamming distance divided by the vector
// length, in [0, 1]. Empty vectors have distance 0.
func NormalizedHamming(a, b Vector) (float64, error) {
	d, err := Hamming(a, b)
	if err != nil {
		return 0, err
	}
	if a.n == 0 {
		return 0, nil
	}
	return float64(d) / float64(a.n), nil
}
