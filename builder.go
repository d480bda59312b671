// Package sdmgo provides a sparse distributed memory for high-dimensional binary data.
//
// This file implements the fluent builder API for creating and configuring SDM instances.
// The builder is immutable - each method returns a new builder with the updated configuration.
package sdmgo

import (
	"github.com/hupe1980/sdmgo/codec"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/store"
	"github.com/hupe1980/sdmgo/util"
)

// Memory creates a new memory builder with the specified address width and
// number of hard locations.
//
// The builder is immutable - each method returns a new builder with the updated
// configuration. This ensures thread-safety and prevents accidental state sharing.
//
// Example:
//
//	mem, err := sdmgo.Memory(256, 2000).
//	    Factor(0.45).
//	    Seed(42).
//	    Parallelism(4).
//	    Build()
func Memory(dimensions, numLocations int) MemoryBuilder {
	return MemoryBuilder{
		dimensions:   dimensions,
		numLocations: numLocations,
		factor:       store.DefaultOptions.CriticalDistanceFactor,
		parallelism:  store.DefaultOptions.Parallelism,
	}
}

// MemoryBuilder is an immutable fluent builder for creating SDM instances.
// Each method returns a new builder with the updated configuration.
type MemoryBuilder struct {
	dimensions   int
	numLocations int
	factor       float64
	seed         *int64
	source       *util.RNG
	parallelism  int
	codec        codec.Codec
	logger       *Logger
	metrics      MetricsCollector
	compression  *persistence.Compression
}

// Factor sets the critical distance factor. The activation radius is the
// factor multiplied by the address width, so at 256 dimensions a factor of
// 0.3 activates every location within Hamming distance 76 of the probe.
// Default: 0.3. Recommended range: 0.3-0.45.
func (b MemoryBuilder) Factor(factor float64) MemoryBuilder {
	b.factor = factor
	return b
}

// Seed sets the seed for deterministic location generation. Two memories
// built with the same seed and shape hold identical address and counter
// planes. If not set, a random seed (time-based) is used.
func (b MemoryBuilder) Seed(seed int64) MemoryBuilder {
	b.seed = &seed
	return b
}

// Source sets the random source for location generation. Takes precedence
// over Seed.
func (b MemoryBuilder) Source(source *util.RNG) MemoryBuilder {
	b.source = source
	return b
}

// Parallelism sets the number of worker goroutines used for location scans.
// Default: 1 (sequential). Recommended: GOMAXPROCS for large memories.
func (b MemoryBuilder) Parallelism(n int) MemoryBuilder {
	b.parallelism = n
	return b
}

// Codec sets the codec used for text export and import.
func (b MemoryBuilder) Codec(c codec.Codec) MemoryBuilder {
	b.codec = c
	return b
}

// Logger sets the structured logger for operation tracing.
func (b MemoryBuilder) Logger(l *Logger) MemoryBuilder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b MemoryBuilder) Metrics(mc MetricsCollector) MemoryBuilder {
	b.metrics = mc
	return b
}

// Zstd selects zstd compression for snapshots. This is the default.
func (b MemoryBuilder) Zstd() MemoryBuilder {
	c := persistence.CompressionZstd
	b.compression = &c
	return b
}

// LZ4 selects LZ4 compression for snapshots. Faster than zstd with a
// lower compression ratio.
func (b MemoryBuilder) LZ4() MemoryBuilder {
	c := persistence.CompressionLZ4
	b.compression = &c
	return b
}

// Uncompressed disables snapshot compression.
func (b MemoryBuilder) Uncompressed() MemoryBuilder {
	c := persistence.CompressionNone
	b.compression = &c
	return b
}

// Build creates the SDM instance.
func (b MemoryBuilder) Build() (*SDM, error) {
	optFns := []Option{
		WithCriticalDistanceFactor(b.factor),
		WithParallelism(b.parallelism),
	}

	if b.seed != nil {
		optFns = append(optFns, WithSeed(*b.seed))
	}
	if b.source != nil {
		optFns = append(optFns, WithRandomSource(b.source))
	}
	if b.codec != nil {
		optFns = append(optFns, WithCodec(b.codec))
	}
	if b.logger != nil {
		optFns = append(optFns, WithLogger(b.logger))
	}
	if b.metrics != nil {
		optFns = append(optFns, WithMetricsCollector(b.metrics))
	}
	if b.compression != nil {
		optFns = append(optFns, WithCompression(*b.compression))
	}

	return New(b.dimensions, b.numLocations, optFns...)
}

// MustBuild creates the SDM instance, panicking on error.
func (b MemoryBuilder) MustBuild() *SDM {
	mem, err := b.Build()
	if err != nil {
		panic(err)
	}
	return mem
}
