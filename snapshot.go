package sdmgo

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/hupe1980/sdmgo/blobstore"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/store"
)

// encodeSnapshot frames the memory contents with a persistence envelope:
// header, then the compressed store body with a checksum.
func (s *SDM) encodeSnapshot(w io.Writer) (int64, error) {
	header := &persistence.FileHeader{
		Compression:  s.compression,
		Dimensions:   uint32(s.store.Dimensions()),
		NumLocations: uint64(s.store.NumLocations()),
		FactorBits:   math.Float64bits(s.store.CriticalDistanceFactor()),
	}

	return persistence.Encode(w, header, func(body io.Writer) error {
		_, err := s.store.WriteTo(body)
		return err
	})
}

// decodeSnapshot reads a framed snapshot and reconstructs the store. It
// returns the total framed size so callers can report it.
func decodeSnapshot(r io.Reader, opts options) (*store.Store, int64, error) {
	var mem *store.Store

	header, err := persistence.Decode(r, func(body io.Reader) error {
		var err error
		mem, err = store.ReadFrom(body, func(o *store.Options) {
			o.Parallelism = opts.parallelism
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	// The checksum covers the body only; catch a header that disagrees with
	// what the body decoded to.
	if int(header.Dimensions) != mem.Dimensions() || header.NumLocations != uint64(mem.NumLocations()) {
		return nil, 0, fmt.Errorf("snapshot header does not match body: header %dx%d, body %dx%d",
			header.Dimensions, header.NumLocations, mem.Dimensions(), mem.NumLocations())
	}

	return mem, persistence.HeaderSize + int64(header.BodyLength), nil
}

// SaveToWriter writes a framed snapshot of the memory to w and returns the
// number of bytes written. The snapshot captures addresses, accumulators and
// configuration; reloading it reproduces the memory exactly.
func (s *SDM) SaveToWriter(w io.Writer) (int64, error) {
	start := time.Now()

	n, err := s.encodeSnapshot(w)
	duration := time.Since(start)

	err = translateError(err)
	s.metrics.RecordSnapshotSave(n, duration, err)

	return n, err
}

// SaveToFile writes a framed snapshot to the named file. The write is
// atomic: data goes to a temporary file in the same directory, is synced and
// then renamed over the destination, so a crash never leaves a torn
// snapshot behind.
func (s *SDM) SaveToFile(filename string) error {
	start := time.Now()

	var n int64
	err := persistence.SaveToFile(filename, func(w io.Writer) error {
		var err error
		n, err = s.encodeSnapshot(w)
		return err
	})
	duration := time.Since(start)

	err = translateError(err)
	s.metrics.RecordSnapshotSave(n, duration, err)
	s.logger.LogSnapshotSave(context.Background(), filename, n, err)

	return err
}

// SaveToStore writes a framed snapshot as a blob. Partial writes are
// discarded, so readers never observe a half-written snapshot. For versioned
// snapshots with manifests and a latest pointer, use snapshot.Catalog
// instead.
func (s *SDM) SaveToStore(ctx context.Context, bs blobstore.BlobStore, name string) error {
	start := time.Now()

	n, err := s.saveToStore(ctx, bs, name)
	duration := time.Since(start)

	err = translateError(err)
	s.metrics.RecordSnapshotSave(n, duration, err)
	s.logger.LogSnapshotSave(ctx, name, n, err)

	return err
}

func (s *SDM) saveToStore(ctx context.Context, bs blobstore.BlobStore, name string) (int64, error) {
	wb, err := bs.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	n, err := s.encodeSnapshot(wb)
	if err != nil {
		blobstore.Discard(ctx, bs, wb, name)
		return n, err
	}

	return n, wb.Close()
}

// LoadFromReader reconstructs a memory from a framed snapshot. The snapshot
// is authoritative for dimensions, location count and critical distance
// factor; options supply non-persisted settings such as the logger, metrics
// collector and scan parallelism.
func LoadFromReader(r io.Reader, optFns ...Option) (*SDM, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	mem, n, err := decodeSnapshot(r, opts)
	duration := time.Since(start)

	err = translateError(err)
	opts.metricsCollector.RecordSnapshotLoad(n, duration, err)

	if err != nil {
		return nil, err
	}

	return wrap(mem, opts), nil
}

// LoadFromFile reconstructs a memory from a snapshot file.
func LoadFromFile(filename string, optFns ...Option) (*SDM, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	var (
		mem *store.Store
		n   int64
	)

	err := persistence.LoadFromFile(filename, func(r io.Reader) error {
		var err error
		mem, n, err = decodeSnapshot(r, opts)
		return err
	})
	duration := time.Since(start)

	err = translateError(err)
	opts.metricsCollector.RecordSnapshotLoad(n, duration, err)
	opts.logger.LogSnapshotLoad(context.Background(), filename, err)

	if err != nil {
		return nil, err
	}

	return wrap(mem, opts), nil
}

// LoadFromStore reconstructs a memory from a snapshot blob.
func LoadFromStore(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*SDM, error) {
	opts := applyOptions(optFns)
	start := time.Now()

	mem, n, err := loadFromStore(ctx, bs, name, opts)
	duration := time.Since(start)

	err = translateError(err)
	opts.metricsCollector.RecordSnapshotLoad(n, duration, err)
	opts.logger.LogSnapshotLoad(ctx, name, err)

	if err != nil {
		return nil, err
	}

	return wrap(mem, opts), nil
}

func loadFromStore(ctx context.Context, bs blobstore.BlobStore, name string, opts options) (*store.Store, int64, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	return decodeSnapshot(r, opts)
}

// Open loads the memory from filename, or creates a fresh one with the given
// shape when the file does not exist yet. A snapshot with a different
// address width than requested fails with ErrDimensionMismatch rather than
// silently loading the wrong memory.
func Open(filename string, dimensions, numLocations int, optFns ...Option) (*SDM, error) {
	if _, err := os.Stat(filename); err != nil {
		if os.IsNotExist(err) {
			return New(dimensions, numLocations, optFns...)
		}
		return nil, err
	}

	mem, err := LoadFromFile(filename, optFns...)
	if err != nil {
		return nil, err
	}

	if mem.Dimensions() != dimensions {
		return nil, &ErrDimensionMismatch{Expected: dimensions, Actual: mem.Dimensions()}
	}

	return mem, nil
}
