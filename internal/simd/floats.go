package simd

var (
	addImpl    = addGeneric
	divideImpl = divideGeneric
)

// AddInPlace adds src element-wise into dst.
//
// SAFETY: This function assumes len(dst) == len(src).
// It does NOT perform bounds checks for performance reasons.
// Callers MUST ensure lengths match to avoid buffer over-reads.
func AddInPlace(dst, src []float32) {
	addImpl(dst, src)
}

// DivideInPlace divides all elements of a by divisor.
//
// This is primarily used to turn an accumulated sum into a mean. True
// division is used rather than multiplication by a reciprocal, so the
// result is the single-precision quotient for every element.
func DivideInPlace(a []float32, divisor float32) {
	divideImpl(a, divisor)
}

func addGeneric(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func divideGeneric(a []float32, divisor float32) {
	for i := range a {
		a[i] /= divisor
	}
}
