package store

import (
	"sync"

	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/internal/simd"
)

// minLocationsPerWorker keeps goroutine fan-out from dominating small scans.
const minLocationsPerWorker = 2048

// scanDistances computes the Hamming distance from addr to every hard
// location address. The returned buffer comes from the store's pool;
// callers must return it with distPool.Put once done.
//
// The address plane is immutable after construction, so the scan takes no
// lock. With Parallelism > 1 the plane is split into contiguous chunks and
// scanned concurrently; every chunk writes a disjoint range of the output,
// so the result is identical to a sequential scan.
func (s *Store) scanDistances(addr bitvec.Vector) []int32 {
	out := s.distPool.Get().([]int32)
	query := addr.Words()

	workers := s.parallelism
	if limit := (s.numLocations + minLocationsPerWorker - 1) / minLocationsPerWorker; workers > limit {
		workers = limit
	}

	if workers <= 1 {
		simd.HammingBatch(query, s.addresses, s.words, out)
		return out
	}

	chunk := (s.numLocations + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > s.numLocations {
			hi = s.numLocations
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			simd.HammingBatch(query, s.addresses[lo*s.words:hi*s.words], s.words, out[lo:hi])
		}(lo, hi)
	}
	wg.Wait()

	return out
}

// activated reports whether a location at Hamming distance d participates
// in an operation. The critical distance is an inclusive threshold.
func (s *Store) activated(d int32) bool {
	return float64(d) <= s.criticalDistance
}
