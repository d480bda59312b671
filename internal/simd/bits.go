package simd

import "math/bits"

var (
	hammingImpl      = hammingGeneric
	hammingBatchImpl = hammingBatchGeneric
)

// HammingWords counts the differing bit positions between two packed
// bit vectors. Distance is computed as the popcount of XOR, which compiles
// to the POPCNT instruction on amd64.
//
// SAFETY: This function assumes len(a) == len(b).
// It does NOT perform bounds checks for performance reasons.
// Callers MUST ensure lengths match to avoid buffer over-reads.
func HammingWords(a, b []uint64) int {
	return hammingImpl(a, b)
}

// HammingBatch computes Hamming distances between query and a batch of
// packed bit vectors. addresses is a flattened array of N vectors, each
// words uint64s wide. out must have length N (len(addresses) / words).
func HammingBatch(query []uint64, addresses []uint64, words int, out []int32) {
	hammingBatchImpl(query, addresses, words, out)
}

func hammingGeneric(a, b []uint64) int {
	var dist int
	for i := range a {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}

func hammingBatchGeneric(query []uint64, addresses []uint64, words int, out []int32) {
	if words <= 0 || len(out) == 0 {
		return
	}
	if len(query) < words {
		return
	}

	q := query[:words]
	maxVal := len(addresses) / words
	n := len(out)
	if maxVal < n {
		n = maxVal
	}

	for i := 0; i < n; i++ {
		offset := i * words
		vec := addresses[offset : offset+words]
		out[i] = int32(hammingImpl(q, vec))
	}
}
