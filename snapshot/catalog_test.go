package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/sdmgo/blobstore"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/hupe1980/sdmgo/resource"
	"github.com/hupe1980/sdmgo/store"
	"github.com/hupe1980/sdmgo/testutil"
	"github.com/hupe1980/sdmgo/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDimensions   = 128
	testNumLocations = 256
)

func newTestMemory(t *testing.T, seed int64) *store.Store {
	t.Helper()

	mem, err := store.New(func(o *store.Options) {
		o.Dimensions = testDimensions
		o.NumLocations = testNumLocations
		o.Source = util.NewRNG(seed)
	})
	require.NoError(t, err)

	return mem
}

func writeNoise(t *testing.T, mem *store.Store, rng *testutil.RNG, n int) {
	t.Helper()

	ctx := context.Background()
	data := make([]float32, testDimensions)

	for i := 0; i < n; i++ {
		rng.FillUniform(data)
		_, err := mem.Write(ctx, rng.Address(testDimensions), data)
		require.NoError(t, err)
	}
}

// assertManifestEqual compares manifests field by field. CreatedAt goes
// through time.Equal because a JSON round trip changes the time's internal
// representation.
func assertManifestEqual(t *testing.T, want, got *Manifest) {
	t.Helper()

	assert.Equal(t, want.FormatVersion, got.FormatVersion)
	assert.Equal(t, want.Generation, got.Generation)
	assert.Equal(t, want.Name, got.Name)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.Dimensions, got.Dimensions)
	assert.Equal(t, want.NumLocations, got.NumLocations)
	assert.Equal(t, want.CriticalDistanceFactor, got.CriticalDistanceFactor)
	assert.Equal(t, want.Compression, got.Compression)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.Checksum, got.Checksum)
}

func TestCatalogPublishAndLatest(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(blobstore.NewMemoryStore())

	mem := newTestMemory(t, 42)

	m, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)

	assert.Equal(t, ManifestFormatVersion, m.FormatVersion)
	assert.Equal(t, uint64(1), m.Generation)
	assert.Equal(t, "snapshots/0000000000000001.sdm", m.Name)
	assert.Equal(t, testDimensions, m.Dimensions)
	assert.Equal(t, testNumLocations, m.NumLocations)
	assert.InDelta(t, 0.3, m.CriticalDistanceFactor, 1e-9)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Greater(t, m.Size, int64(persistence.HeaderSize))

	latest, err := catalog.Latest(ctx)
	require.NoError(t, err)
	assertManifestEqual(t, m, latest)
}

func TestCatalogPublishIncrementsGeneration(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(blobstore.NewMemoryStore())

	mem := newTestMemory(t, 42)
	rng := testutil.NewRNG(7)

	for want := uint64(1); want <= 3; want++ {
		writeNoise(t, mem, rng, 2)

		m, err := catalog.Publish(ctx, mem)
		require.NoError(t, err)
		assert.Equal(t, want, m.Generation)
	}

	latest, err := catalog.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), latest.Generation)
}

func TestCatalogLatestEmpty(t *testing.T) {
	catalog := NewCatalog(blobstore.NewMemoryStore())

	_, err := catalog.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	manifests, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, manifests)
}

func TestCatalogLoadRoundTrip(t *testing.T) {
	for _, compression := range []persistence.Compression{
		persistence.CompressionNone,
		persistence.CompressionZstd,
		persistence.CompressionLZ4,
	} {
		t.Run(compression.String(), func(t *testing.T) {
			ctx := context.Background()
			catalog := NewCatalog(blobstore.NewMemoryStore(), func(o *Options) {
				o.Compression = compression
			})

			mem := newTestMemory(t, 42)
			rng := testutil.NewRNG(7)
			writeNoise(t, mem, rng, 8)

			published, err := catalog.Publish(ctx, mem)
			require.NoError(t, err)

			loaded, m, err := catalog.LoadLatest(ctx)
			require.NoError(t, err)
			assertManifestEqual(t, published, m)

			assert.Equal(t, mem.Dimensions(), loaded.Dimensions())
			assert.Equal(t, mem.NumLocations(), loaded.NumLocations())
			assert.Equal(t, mem.CriticalDistanceFactor(), loaded.CriticalDistanceFactor())

			// Behavioral identity: same activation sets and read results.
			for i := 0; i < 10; i++ {
				addr := rng.Address(testDimensions)

				wantSet, err := mem.Activations(ctx, addr)
				require.NoError(t, err)
				gotSet, err := loaded.Activations(ctx, addr)
				require.NoError(t, err)
				assert.True(t, wantSet.Equals(gotSet))

				want, err := mem.Read(ctx, addr)
				require.NoError(t, err)
				got, err := loaded.Read(ctx, addr)
				require.NoError(t, err)
				assert.Equal(t, want.Activations, got.Activations)
				assert.Equal(t, want.Data, got.Data)
			}
		})
	}
}

func TestCatalogList(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(blobstore.NewMemoryStore())

	mem := newTestMemory(t, 42)
	rng := testutil.NewRNG(7)

	for i := 0; i < 3; i++ {
		writeNoise(t, mem, rng, 1)
		_, err := catalog.Publish(ctx, mem)
		require.NoError(t, err)
	}

	manifests, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 3)

	for i, m := range manifests {
		assert.Equal(t, uint64(i+1), m.Generation)
	}
}

func TestCatalogLoadSpecificGeneration(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(blobstore.NewMemoryStore())

	mem := newTestMemory(t, 42)
	rng := testutil.NewRNG(7)
	probe := rng.Address(testDimensions)

	_, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)

	before, err := mem.Read(ctx, probe)
	require.NoError(t, err)

	writeNoise(t, mem, rng, 8)
	_, err = catalog.Publish(ctx, mem)
	require.NoError(t, err)

	// Generation 1 still reads like the memory did at publish time.
	old, m, err := catalog.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Generation)

	got, err := old.Read(ctx, probe)
	require.NoError(t, err)
	assert.Equal(t, before.Activations, got.Activations)
	assert.Equal(t, before.Data, got.Data)

	_, _, err = catalog.Load(ctx, 99)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

// contestedPointer lets another commit land between a publish's write and
// its own commit, forcing the optimistic-concurrency failure path.
type contestedPointer struct {
	PointerStore
}

func (p *contestedPointer) Commit(ctx context.Context, manifest string, generation uint64) error {
	if err := p.PointerStore.Commit(ctx, "manifests/intruder.json", generation); err != nil {
		return err
	}
	return p.PointerStore.Commit(ctx, manifest, generation)
}

func TestCatalogPublishLosesRace(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	catalog := NewCatalog(bs, func(o *Options) {
		o.Pointer = &contestedPointer{PointerStore: NewBlobPointerStore(bs)}
	})

	mem := newTestMemory(t, 42)

	_, err := catalog.Publish(ctx, mem)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestCatalogLoadCorruptedBody(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	catalog := NewCatalog(bs)

	mem := newTestMemory(t, 42)

	m, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)

	// Flip one body byte behind the header.
	blob, err := bs.Open(ctx, m.Name)
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	data[persistence.HeaderSize] ^= 0xFF
	require.NoError(t, bs.Put(ctx, m.Name, data))

	_, _, err = catalog.LoadLatest(ctx)
	assert.True(t, persistence.IsChecksumMismatch(err), "got %v", err)
}

func TestCatalogLoadWrongBlob(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	catalog := NewCatalog(bs)

	mem := newTestMemory(t, 42)
	rng := testutil.NewRNG(7)

	m1, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)

	writeNoise(t, mem, rng, 4)
	m2, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)
	require.NotEqual(t, m1.Checksum, m2.Checksum)

	// Replace generation 1's snapshot with generation 2's bytes. The blob
	// decodes fine but is not the one manifest 1 describes.
	blob, err := bs.Open(ctx, m2.Name)
	require.NoError(t, err)
	data, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	require.NoError(t, blob.Close())
	require.NoError(t, bs.Put(ctx, m1.Name, data))

	_, _, err = catalog.Load(ctx, 1)
	assert.True(t, persistence.IsChecksumMismatch(err), "got %v", err)
}

func TestCatalogPrune(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	catalog := NewCatalog(bs)

	mem := newTestMemory(t, 42)
	rng := testutil.NewRNG(7)

	for i := 0; i < 4; i++ {
		writeNoise(t, mem, rng, 1)
		_, err := catalog.Publish(ctx, mem)
		require.NoError(t, err)
	}

	pruned, err := catalog.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, pruned)

	manifests, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, uint64(3), manifests[0].Generation)
	assert.Equal(t, uint64(4), manifests[1].Generation)

	_, _, err = catalog.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, _, err = catalog.LoadLatest(ctx)
	require.NoError(t, err)

	// Pruning below one generation keeps the newest.
	pruned, err = catalog.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, pruned)
}

func TestCatalogWithResourceController(t *testing.T) {
	ctx := context.Background()

	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: 1,
		IOLimitBytesPerSec:   8 << 20,
	})

	catalog := NewCatalog(blobstore.NewMemoryStore(), func(o *Options) {
		o.Controller = rc
	})

	mem := newTestMemory(t, 42)

	_, err := catalog.Publish(ctx, mem)
	require.NoError(t, err)

	loaded, _, err := catalog.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, mem.Dimensions(), loaded.Dimensions())
}

func TestCatalogManifestEncoding(t *testing.T) {
	// Manifest blobs are plain documents; make sure they read back through
	// a fresh catalog instance (no in-process state carried over).
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	mem := newTestMemory(t, 42)

	published, err := NewCatalog(bs).Publish(ctx, mem)
	require.NoError(t, err)

	reopened := NewCatalog(bs)
	latest, err := reopened.Latest(ctx)
	require.NoError(t, err)
	assertManifestEqual(t, published, latest)

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		CurrentName,
		fmt.Sprintf("manifests/%016d.json", 1),
		fmt.Sprintf("snapshots/%016d.sdm", 1),
	}, names)
}
