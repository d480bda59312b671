package sdmgo

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/codec"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/store"
)

// ReadResult is the outcome of a read: the reconstructed vector and the
// number of locations that contributed to it.
type ReadResult = store.ReadResult

// Stats summarizes the memory configuration and its in-memory footprint.
type Stats = store.Stats

// SDM wraps a sparse distributed memory with structured logging, metrics
// and snapshot plumbing. All methods are safe for concurrent use.
//
// Construct one with New, the Memory builder, or one of the Load functions.
type SDM struct {
	store       *store.Store
	codec       codec.Codec
	metrics     MetricsCollector
	logger      *Logger
	compression persistence.Compression
}

// New creates a sparse distributed memory with the given address width and
// hard location count. Every location starts with a random address and a
// random accumulator; pass WithSeed or WithRandomSource for reproducible
// memories.
func New(dimensions, numLocations int, optFns ...Option) (*SDM, error) {
	opts := applyOptions(optFns)

	mem, err := store.New(func(o *store.Options) {
		o.Dimensions = dimensions
		o.NumLocations = numLocations
		o.CriticalDistanceFactor = opts.factor
		o.Source = opts.source
		o.Parallelism = opts.parallelism
	})
	if err != nil {
		return nil, translateError(err)
	}

	return wrap(mem, opts), nil
}

// wrap assembles the facade around an existing core store.
func wrap(mem *store.Store, opts options) *SDM {
	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	return &SDM{
		store:       mem,
		codec:       c,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
		compression: opts.compression,
	}
}

// Store returns the underlying memory store for callers that need the core
// API directly, such as snapshot.Catalog, which publishes from it.
func (s *SDM) Store() *store.Store { return s.store }

// Write superimposes data onto every location within the critical distance
// of addr and returns the number of locations activated. Writing to an
// address that activates nothing leaves the memory unchanged; that is not
// an error.
func (s *SDM) Write(ctx context.Context, addr bitvec.Vector, data []float32) (int, error) {
	start := time.Now()

	activated, err := s.store.Write(ctx, addr, data)
	duration := time.Since(start)
	err = translateError(err)

	s.metrics.RecordWrite(activated, duration, err)
	s.logger.LogWrite(ctx, activated, err)

	return activated, err
}

// Read reconstructs the vector stored near addr by averaging the
// accumulators of every location within the critical distance. A read that
// activates nothing returns an all-zero vector and an activation count of
// zero.
func (s *SDM) Read(ctx context.Context, addr bitvec.Vector) (ReadResult, error) {
	start := time.Now()

	res, err := s.store.Read(ctx, addr)
	duration := time.Since(start)
	err = translateError(err)

	s.metrics.RecordRead(res.Activations, duration, err)
	s.logger.LogRead(ctx, res.Activations, err)

	return res, err
}

// Activations returns the exact set of location indices within the critical
// distance of addr, the same set a Write or Read at addr touches.
func (s *SDM) Activations(ctx context.Context, addr bitvec.Vector) (*roaring.Bitmap, error) {
	bm, err := s.store.Activations(ctx, addr)
	return bm, translateError(err)
}

// Dimensions returns the width of addresses and data vectors.
func (s *SDM) Dimensions() int { return s.store.Dimensions() }

// NumLocations returns the number of hard locations.
func (s *SDM) NumLocations() int { return s.store.NumLocations() }

// CriticalDistance returns the activation radius in bits,
// Dimensions * CriticalDistanceFactor.
func (s *SDM) CriticalDistance() float64 { return s.store.CriticalDistance() }

// CriticalDistanceFactor returns the configured activation radius factor.
func (s *SDM) CriticalDistanceFactor() float64 { return s.store.CriticalDistanceFactor() }

// Stats returns statistics about the memory.
func (s *SDM) Stats() Stats { return s.store.Stats() }

// HammingDistance returns the number of bit positions where a and b differ.
// Comparing vectors of different lengths fails with ErrDimensionMismatch.
func HammingDistance(a, b bitvec.Vector) (int, error) {
	d, err := bitvec.Hamming(a, b)
	return d, translateError(err)
}
