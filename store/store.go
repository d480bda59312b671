package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/internal/simd"
	"github.com/hupe1980/sdmgo/util"
)

// Options contains configuration options for the memory store.
type Options struct {
	// Dimensions is the width of addresses (in bits) and of data vectors
	// (in elements). It must be > 0 and is fixed for the life of the store.
	Dimensions int

	// NumLocations is the number of hard locations. It must be > 0.
	NumLocations int

	// CriticalDistanceFactor scales the activation radius: a location
	// participates in an operation when the Hamming distance between its
	// address and the query address is at most
	// Dimensions * CriticalDistanceFactor (inclusive).
	CriticalDistanceFactor float64

	// Source supplies the randomness for the hard location addresses.
	// A nil Source uses a time-seeded generator; supply a seeded source
	// for reproducible address planes.
	Source *util.RNG

	// Parallelism bounds the number of goroutines used for the distance
	// scan. Results are identical for any value; 1 disables fan-out.
	Parallelism int
}

// DefaultOptions contains the default configuration options for the memory
// store. Dimensions and NumLocations are required and have no default.
var DefaultOptions = Options{
	CriticalDistanceFactor: 0.3,
	Parallelism:            1,
}

// ReadResult represents the outcome of a read at a query address.
type ReadResult struct {
	// Data is the element-wise mean of the activated locations'
	// accumulators. It is an all-zero vector when nothing was activated.
	Data []float32

	// Activations is the number of locations that participated.
	Activations int
}

// Stats summarizes the memory configuration and its in-memory footprint.
type Stats struct {
	Dimensions             int
	NumLocations           int
	CriticalDistance       float64
	CriticalDistanceFactor float64
	AddressBytes           int64
	DataBytes              int64
}

// Store is a sparse distributed memory over a fixed population of hard
// locations. The address plane is immutable after construction; the
// accumulator plane mutates in place under a read-write lock.
//
// Both planes are stored flattened (location-major) so the distance scan
// and the accumulate loop run over contiguous memory.
type Store struct {
	mu sync.RWMutex

	dimensions       int
	numLocations     int
	factor           float64
	criticalDistance float64
	words            int // uint64 words per packed address

	addresses []uint64  // numLocations rows of words uint64s
	data      []float32 // numLocations rows of dimensions float32s

	parallelism int
	distPool    *sync.Pool
}

// New creates a new memory store. Every hard location starts with a random
// address and a random accumulator, both drawn uniformly from [0, 1): the
// address by thresholding its samples at 0.5, the accumulator keeping them
// as real values.
//
// Draws come from opts.Source in location order, address samples before
// accumulator samples, so two stores built from the same seed are identical
// bit for bit. Use FromLocations for zeroed or explicit accumulators.
func New(optFns ...func(o *Options)) (*Store, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimensions <= 0 {
		return nil, &ErrInvalidDimension{Dimension: opts.Dimensions}
	}

	if opts.NumLocations <= 0 {
		return nil, &ErrInvalidNumLocations{NumLocations: opts.NumLocations}
	}

	if err := validateFactor(opts.CriticalDistanceFactor); err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		source = util.NewRNG(time.Now().UnixNano())
	}

	s := newEmpty(opts.Dimensions, opts.NumLocations, opts.CriticalDistanceFactor, opts.Parallelism)

	samples := make([]float32, s.dimensions)
	for i := 0; i < s.numLocations; i++ {
		source.FillUniform(samples)
		addr := bitvec.FromFloat32(samples, bitvec.DefaultThreshold)
		copy(s.addresses[i*s.words:(i+1)*s.words], addr.Words())
		source.FillUniform(s.data[i*s.dimensions : (i+1)*s.dimensions])
	}

	return s, nil
}

// FromLocations builds a store from explicit hard locations. All addresses
// must share one width; data may be nil for all-zero accumulators, or must
// hold one row per address (nil rows stay zero).
func FromLocations(addresses []bitvec.Vector, data [][]float32, optFns ...func(o *Options)) (*Store, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if len(addresses) == 0 {
		return nil, &ErrInvalidNumLocations{NumLocations: 0}
	}

	if data != nil && len(data) != len(addresses) {
		return nil, fmt.Errorf("store: %d data rows for %d addresses", len(data), len(addresses))
	}

	dimensions := addresses[0].Len()
	if dimensions <= 0 {
		return nil, &ErrInvalidDimension{Dimension: dimensions}
	}

	if err := validateFactor(opts.CriticalDistanceFactor); err != nil {
		return nil, err
	}

	s := newEmpty(dimensions, len(addresses), opts.CriticalDistanceFactor, opts.Parallelism)

	for i, addr := range addresses {
		if addr.Len() != dimensions {
			return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: addr.Len()}
		}
		copy(s.addresses[i*s.words:(i+1)*s.words], addr.Words())
	}

	for i, row := range data {
		if row == nil {
			continue
		}
		if len(row) != dimensions {
			return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: len(row)}
		}
		copy(s.data[i*dimensions:(i+1)*dimensions], row)
	}

	return s, nil
}

func newEmpty(dimensions, numLocations int, factor float64, parallelism int) *Store {
	if parallelism <= 0 {
		parallelism = 1
	}

	words := bitvec.WordsFor(dimensions)

	return &Store{
		dimensions:       dimensions,
		numLocations:     numLocations,
		factor:           factor,
		criticalDistance: float64(dimensions) * factor,
		words:            words,
		addresses:        make([]uint64, numLocations*words),
		data:             make([]float32, numLocations*dimensions),
		parallelism:      parallelism,
		distPool: &sync.Pool{
			New: func() any { return make([]int32, numLocations) },
		},
	}
}

func validateFactor(factor float64) error {
	if factor < 0 {
		return fmt.Errorf("store: critical distance factor must be >= 0, got %g", factor)
	}
	return nil
}

// Dimensions returns the width of addresses and data vectors.
func (s *Store) Dimensions() int { return s.dimensions }

// NumLocations returns the number of hard locations.
func (s *Store) NumLocations() int { return s.numLocations }

// CriticalDistance returns the activation radius in bits,
// Dimensions * CriticalDistanceFactor.
func (s *Store) CriticalDistance() float64 { return s.criticalDistance }

// CriticalDistanceFactor returns the configured activation radius factor.
func (s *Store) CriticalDistanceFactor() float64 { return s.factor }

// Write superimposes data onto the accumulator of every location within the
// critical distance of addr and returns the number of locations activated.
// A write that activates no locations leaves the memory unchanged; that is
// not an error.
func (s *Store) Write(ctx context.Context, addr bitvec.Vector, data []float32) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if addr.Len() != s.dimensions {
		return 0, &ErrDimensionMismatch{Expected: s.dimensions, Actual: addr.Len()}
	}

	if len(data) != s.dimensions {
		return 0, &ErrDimensionMismatch{Expected: s.dimensions, Actual: len(data)}
	}

	dists := s.scanDistances(addr)
	defer s.distPool.Put(dists)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Accumulate in ascending location order so concurrent configurations
	// produce bit-identical planes.
	activated := 0
	for i := 0; i < s.numLocations; i++ {
		if !s.activated(dists[i]) {
			continue
		}
		simd.AddInPlace(s.data[i*s.dimensions:(i+1)*s.dimensions], data)
		activated++
	}

	return activated, nil
}

// Read averages the accumulators of every location within the critical
// distance of addr. When no location is activated it returns an all-zero
// vector and an activation count of zero.
func (s *Store) Read(ctx context.Context, addr bitvec.Vector) (ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return ReadResult{}, err
	}

	if addr.Len() != s.dimensions {
		return ReadResult{}, &ErrDimensionMismatch{Expected: s.dimensions, Actual: addr.Len()}
	}

	dists := s.scanDistances(addr)
	defer s.distPool.Put(dists)

	out := make([]float32, s.dimensions)

	s.mu.RLock()
	defer s.mu.RUnlock()

	activated := 0
	for i := 0; i < s.numLocations; i++ {
		if !s.activated(dists[i]) {
			continue
		}
		simd.AddInPlace(out, s.data[i*s.dimensions:(i+1)*s.dimensions])
		activated++
	}

	if activated > 0 {
		simd.DivideInPlace(out, float32(activated))
	}

	return ReadResult{Data: out, Activations: activated}, nil
}

// Activations returns the set of location indices within the critical
// distance of addr. The same set participates in a Write or Read at addr.
func (s *Store) Activations(ctx context.Context, addr bitvec.Vector) (*roaring.Bitmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if addr.Len() != s.dimensions {
		return nil, &ErrDimensionMismatch{Expected: s.dimensions, Actual: addr.Len()}
	}

	dists := s.scanDistances(addr)
	defer s.distPool.Put(dists)

	// The address plane is immutable, so no lock is needed here.
	bm := roaring.New()
	for i := 0; i < s.numLocations; i++ {
		if s.activated(dists[i]) {
			bm.Add(uint32(i))
		}
	}

	return bm, nil
}

// AddressAt returns a copy of the address of location i.
func (s *Store) AddressAt(i int) (bitvec.Vector, error) {
	if i < 0 || i >= s.numLocations {
		return bitvec.Vector{}, fmt.Errorf("store: location %d out of range [0,%d)", i, s.numLocations)
	}

	words := make([]uint64, s.words)
	copy(words, s.addresses[i*s.words:(i+1)*s.words])

	return bitvec.FromWords(words, s.dimensions)
}

// DataAt returns a copy of the accumulator of location i.
func (s *Store) DataAt(i int) ([]float32, error) {
	if i < 0 || i >= s.numLocations {
		return nil, fmt.Errorf("store: location %d out of range [0,%d)", i, s.numLocations)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := make([]float32, s.dimensions)
	copy(row, s.data[i*s.dimensions:(i+1)*s.dimensions])

	return row, nil
}

// Stats returns statistics about the memory.
func (s *Store) Stats() Stats {
	return Stats{
		Dimensions:             s.dimensions,
		NumLocations:           s.numLocations,
		CriticalDistance:       s.criticalDistance,
		CriticalDistanceFactor: s.factor,
		AddressBytes:           int64(len(s.addresses)) * 8,
		DataBytes:              int64(len(s.data)) * 4,
	}
}
