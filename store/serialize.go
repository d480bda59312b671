package store

import (
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/sdmgo/persistence"
)

// Sanity limits for deserialization. Streams that claim more than this are
// rejected before any allocation happens.
const (
	maxDimensions   = 1 << 24
	maxNumLocations = 1 << 32
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the memory contents to w in raw binary form: dimensions,
// location count and activation factor, followed by the packed address
// plane and the accumulator plane. The stream carries no framing; callers
// that need versioning, compression or integrity checks should wrap it in a
// persistence envelope.
//
// It matches the io.WriterTo interface for toolchain friendliness.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cw := &countingWriter{w: w}
	bw := persistence.NewBinaryWriter(cw)

	if err := bw.WriteUint32Slice([]uint32{uint32(s.dimensions)}); err != nil {
		return cw.n, err
	}

	if err := bw.WriteUint64Slice([]uint64{uint64(s.numLocations), math.Float64bits(s.factor)}); err != nil {
		return cw.n, err
	}

	if err := bw.WriteUint64Slice(s.addresses); err != nil {
		return cw.n, err
	}

	if err := bw.WriteFloat32Slice(s.data); err != nil {
		return cw.n, err
	}

	return cw.n, nil
}

// ReadFrom reconstructs a memory from the raw binary form produced by
// WriteTo. Dimensions, location count and activation factor are taken from
// the stream and are authoritative; options may supply non-persisted
// settings such as Parallelism. A non-zero opts.Dimensions acts as an
// expectation and fails with ErrDimensionMismatch when the stream differs.
func ReadFrom(r io.Reader, optFns ...func(o *Options)) (*Store, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	br := persistence.NewBinaryReader(r)

	dims, err := br.ReadUint32Slice(1)
	if err != nil {
		return nil, fmt.Errorf("failed to read dimensions: %w", err)
	}

	meta, err := br.ReadUint64Slice(2)
	if err != nil {
		return nil, fmt.Errorf("failed to read location count: %w", err)
	}

	dimensions := int(dims[0])
	numLocations := meta[0]
	factor := math.Float64frombits(meta[1])

	if dimensions <= 0 || dimensions > maxDimensions {
		return nil, &ErrInvalidDimension{Dimension: dimensions}
	}

	if numLocations == 0 || numLocations > maxNumLocations {
		return nil, fmt.Errorf("location count %d exceeds limit", numLocations)
	}

	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return nil, fmt.Errorf("invalid critical distance factor: %g", factor)
	}

	if opts.Dimensions != 0 && opts.Dimensions != dimensions {
		return nil, &ErrDimensionMismatch{Expected: opts.Dimensions, Actual: dimensions}
	}

	s := newEmpty(dimensions, int(numLocations), factor, opts.Parallelism)

	if err := br.ReadUint64SliceInto(s.addresses); err != nil {
		return nil, fmt.Errorf("failed to read address plane: %w", err)
	}

	if err := br.ReadFloat32SliceInto(s.data); err != nil {
		return nil, fmt.Errorf("failed to read accumulator plane: %w", err)
	}

	return s, nil
}
