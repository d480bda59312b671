package sdmgo

import (
	"log/slog"

	"github.com/hupe1980/sdmgo/codec"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/store"
	"github.com/hupe1980/sdmgo/util"
)

type options struct {
	factor           float64
	source           *util.RNG
	parallelism      int
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	compression      persistence.Compression
}

// Option configures constructor and load behavior of the facade.
type Option func(*options)

// WithCriticalDistanceFactor sets the activation radius factor: a location
// participates in an operation when the Hamming distance between its
// address and the query address is at most Dimensions * factor (inclusive).
// Default: 0.3.
func WithCriticalDistanceFactor(factor float64) Option {
	return func(o *options) {
		o.factor = factor
	}
}

// WithRandomSource injects the source used to draw hard location addresses
// and initial accumulators. Supply a seeded source to reproduce a memory
// bit for bit.
func WithRandomSource(source *util.RNG) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithSeed is shorthand for WithRandomSource(util.NewRNG(seed)).
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.source = util.NewRNG(seed)
	}
}

// WithParallelism bounds the number of goroutines used for the distance
// scan inside reads and writes. Results are identical for any value;
// 1 disables fan-out.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithCodec configures the codec used for export documents.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression selects the compression applied to snapshot bodies by the
// Save methods. Default: persistence.CompressionZstd.
func WithCompression(compression persistence.Compression) Option {
	return func(o *options) {
		o.compression = compression
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sdmgo.BasicMetricsCollector{}
//	mem, _ := sdmgo.New(256, 1000, sdmgo.WithMetricsCollector(metrics))
//	// ... use mem ...
//	stats := metrics.GetStats()
//	fmt.Printf("Writes: %d, Avg latency: %dns\n", stats.WriteCount, stats.WriteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := sdmgo.NewJSONLogger(slog.LevelInfo)
//	mem, _ := sdmgo.New(256, 1000, sdmgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		factor:           store.DefaultOptions.CriticalDistanceFactor,
		parallelism:      store.DefaultOptions.Parallelism,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      persistence.CompressionZstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
