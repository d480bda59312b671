package sdmgo_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/sdmgo"
	"github.com/hupe1980/sdmgo/blobstore"
	"github.com/hupe1980/sdmgo/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPopulatedMemory builds a small seeded memory and writes one pattern at
// a known hard location address so the accumulator plane is non-trivial.
func newPopulatedMemory(t *testing.T, optFns ...sdmgo.Option) *sdmgo.SDM {
	t.Helper()

	opts := append([]sdmgo.Option{sdmgo.WithSeed(42)}, optFns...)
	mem, err := sdmgo.New(64, 100, opts...)
	require.NoError(t, err)

	addr, err := mem.Store().AddressAt(0)
	require.NoError(t, err)

	data := make([]float32, 64)
	for i := range data {
		data[i] = float32(i) * 0.5
	}

	_, err = mem.Write(context.Background(), addr, data)
	require.NoError(t, err)

	return mem
}

// assertSameMemory checks that two memories hold identical planes and
// configuration.
func assertSameMemory(t *testing.T, want, got *sdmgo.SDM) {
	t.Helper()

	require.Equal(t, want.Dimensions(), got.Dimensions())
	require.Equal(t, want.NumLocations(), got.NumLocations())
	assert.Equal(t, want.CriticalDistanceFactor(), got.CriticalDistanceFactor())

	for i := 0; i < want.NumLocations(); i++ {
		wantAddr, err := want.Store().AddressAt(i)
		require.NoError(t, err)
		gotAddr, err := got.Store().AddressAt(i)
		require.NoError(t, err)
		assert.True(t, wantAddr.Equal(gotAddr), "address %d differs", i)

		wantData, err := want.Store().DataAt(i)
		require.NoError(t, err)
		gotData, err := got.Store().DataAt(i)
		require.NoError(t, err)
		assert.Equal(t, wantData, gotData, "accumulator %d differs", i)
	}
}

func TestSaveLoadWriter(t *testing.T) {
	mem := newPopulatedMemory(t)

	var buf bytes.Buffer
	n, err := mem.SaveToWriter(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Greater(t, n, int64(persistence.HeaderSize))

	loaded, err := sdmgo.LoadFromReader(&buf)
	require.NoError(t, err)

	assertSameMemory(t, mem, loaded)

	// Reads behave identically on the loaded memory.
	addr, err := mem.Store().AddressAt(0)
	require.NoError(t, err)

	want, err := mem.Read(context.Background(), addr)
	require.NoError(t, err)
	got, err := loaded.Read(context.Background(), addr)
	require.NoError(t, err)

	assert.Equal(t, want.Activations, got.Activations)
	assert.Equal(t, want.Data, got.Data)
}

func TestSaveLoadFile(t *testing.T) {
	mem := newPopulatedMemory(t)
	filename := filepath.Join(t.TempDir(), "memory.sdm")

	require.NoError(t, mem.SaveToFile(filename))

	loaded, err := sdmgo.LoadFromFile(filename)
	require.NoError(t, err)

	assertSameMemory(t, mem, loaded)
}

func TestSaveLoadStore(t *testing.T) {
	ctx := context.Background()
	mem := newPopulatedMemory(t)
	bs := blobstore.NewMemoryStore()

	require.NoError(t, mem.SaveToStore(ctx, bs, "memory.sdm"))

	loaded, err := sdmgo.LoadFromStore(ctx, bs, "memory.sdm")
	require.NoError(t, err)

	assertSameMemory(t, mem, loaded)
}

func TestLoadFromStoreMissing(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	_, err := sdmgo.LoadFromStore(ctx, bs, "nope.sdm")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestSaveLoadCompression(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*sdmgo.SDM, error)
	}{
		{
			name:  "Zstd",
			build: func() (*sdmgo.SDM, error) { return sdmgo.Memory(64, 100).Seed(42).Zstd().Build() },
		},
		{
			name:  "LZ4",
			build: func() (*sdmgo.SDM, error) { return sdmgo.Memory(64, 100).Seed(42).LZ4().Build() },
		},
		{
			name:  "Uncompressed",
			build: func() (*sdmgo.SDM, error) { return sdmgo.Memory(64, 100).Seed(42).Uncompressed().Build() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, err := tt.build()
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = mem.SaveToWriter(&buf)
			require.NoError(t, err)

			loaded, err := sdmgo.LoadFromReader(&buf)
			require.NoError(t, err)

			assertSameMemory(t, mem, loaded)
		})
	}
}

func TestLoadHonorsOptions(t *testing.T) {
	mem := newPopulatedMemory(t)
	collector := &sdmgo.BasicMetricsCollector{}

	var buf bytes.Buffer
	n, err := mem.SaveToWriter(&buf)
	require.NoError(t, err)

	loaded, err := sdmgo.LoadFromReader(&buf,
		sdmgo.WithParallelism(4),
		sdmgo.WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	stats := collector.GetStats()
	assert.Equal(t, int64(1), stats.SnapshotLoads)
	assert.Equal(t, n, stats.SnapshotLoadBytes)

	// The loaded memory keeps reporting to the collector it was built with.
	addr, err := loaded.Store().AddressAt(0)
	require.NoError(t, err)
	_, err = loaded.Read(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), collector.GetStats().ReadCount)
}

func TestLoadCorrupted(t *testing.T) {
	mem := newPopulatedMemory(t)

	var buf bytes.Buffer
	_, err := mem.SaveToWriter(&buf)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[persistence.HeaderSize+3] ^= 0xFF

	_, err = sdmgo.LoadFromReader(bytes.NewReader(raw))
	assert.True(t, persistence.IsChecksumMismatch(err), "expected checksum mismatch, got %v", err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "memory.sdm")

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		mem, err := sdmgo.Open(filename, 64, 100, sdmgo.WithSeed(42))
		require.NoError(t, err)
		assert.Equal(t, 64, mem.Dimensions())
		assert.Equal(t, 100, mem.NumLocations())

		// Nothing is written until the caller saves.
		require.NoError(t, mem.SaveToFile(filename))
	})

	t.Run("LoadsWhenPresent", func(t *testing.T) {
		mem, err := sdmgo.Open(filename, 64, 100)
		require.NoError(t, err)
		assert.Equal(t, 64, mem.Dimensions())
		assert.Equal(t, 100, mem.NumLocations())
	})

	t.Run("RejectsWrongDimensions", func(t *testing.T) {
		_, err := sdmgo.Open(filename, 128, 100)
		var dm *sdmgo.ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 128, dm.Expected)
		assert.Equal(t, 64, dm.Actual)
	})
}
