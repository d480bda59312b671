package sdmgo

import (
	"context"
	"testing"

	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/hupe1980/sdmgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDM(t *testing.T) {
	ctx := context.Background()

	t.Run("WriteAndRead", func(t *testing.T) {
		mem, err := New(64, 100, WithSeed(42))
		require.NoError(t, err)

		addr, err := mem.Store().AddressAt(7)
		require.NoError(t, err)

		data := make([]float32, 64)
		for i := range data {
			data[i] = float32(i)
		}

		// Probing with a hard location address activates at least that
		// location, whatever the factor.
		activated, err := mem.Write(ctx, addr, data)
		require.NoError(t, err)
		require.GreaterOrEqual(t, activated, 1)

		result, err := mem.Read(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, activated, result.Activations)
		require.Len(t, result.Data, 64)

		// Every activated accumulator started at a value in [0, 1), so the
		// reconstruction sits within one count above the written data.
		for i, v := range result.Data {
			assert.GreaterOrEqual(t, v, float32(i))
			assert.Less(t, v, float32(i)+1)
		}
	})

	t.Run("ReadWithoutActivation", func(t *testing.T) {
		// At 256 dimensions a random probe lands nowhere near the critical
		// distance of any random location.
		mem, err := New(256, 50, WithSeed(1))
		require.NoError(t, err)

		probe := testutil.NewRNG(99).Address(256)

		result, err := mem.Read(ctx, probe)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Activations)
		assert.Equal(t, make([]float32, 256), result.Data)

		// Writing to the same probe is a no-op, not an error.
		activated, err := mem.Write(ctx, probe, make([]float32, 256))
		require.NoError(t, err)
		assert.Equal(t, 0, activated)
	})

	t.Run("Activations", func(t *testing.T) {
		mem, err := New(64, 100, WithSeed(42), WithCriticalDistanceFactor(0.45))
		require.NoError(t, err)

		addr, err := mem.Store().AddressAt(3)
		require.NoError(t, err)

		bm, err := mem.Activations(ctx, addr)
		require.NoError(t, err)
		assert.True(t, bm.Contains(3))

		// The same set participates in a write at that address.
		activated, err := mem.Write(ctx, addr, make([]float32, 64))
		require.NoError(t, err)
		assert.Equal(t, int(bm.GetCardinality()), activated)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		mem, err := New(64, 10, WithSeed(42))
		require.NoError(t, err)

		short := bitvec.New(32)

		_, err = mem.Write(ctx, short, make([]float32, 64))
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 64, dm.Expected)
		assert.Equal(t, 32, dm.Actual)

		addr, err := mem.Store().AddressAt(0)
		require.NoError(t, err)

		_, err = mem.Write(ctx, addr, make([]float32, 16))
		require.ErrorAs(t, err, &dm)

		_, err = mem.Read(ctx, short)
		require.ErrorAs(t, err, &dm)

		_, err = mem.Activations(ctx, short)
		require.ErrorAs(t, err, &dm)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		mem, err := New(64, 10, WithSeed(42))
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		addr, err := mem.Store().AddressAt(0)
		require.NoError(t, err)

		_, err = mem.Write(canceled, addr, make([]float32, 64))
		assert.ErrorIs(t, err, context.Canceled)

		_, err = mem.Read(canceled, addr)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Accessors", func(t *testing.T) {
		mem, err := New(64, 100, WithSeed(42))
		require.NoError(t, err)

		assert.Equal(t, 64, mem.Dimensions())
		assert.Equal(t, 100, mem.NumLocations())
		assert.InDelta(t, 0.3, mem.CriticalDistanceFactor(), 1e-12)
		assert.InDelta(t, 19.2, mem.CriticalDistance(), 1e-9)

		stats := mem.Stats()
		assert.Equal(t, 64, stats.Dimensions)
		assert.Equal(t, 100, stats.NumLocations)
		assert.Equal(t, int64(100*64*4), stats.DataBytes)
	})

	t.Run("SeededReproducibility", func(t *testing.T) {
		a, err := New(64, 20, WithSeed(7))
		require.NoError(t, err)

		b, err := New(64, 20, WithSeed(7))
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			addrA, err := a.Store().AddressAt(i)
			require.NoError(t, err)
			addrB, err := b.Store().AddressAt(i)
			require.NoError(t, err)
			assert.True(t, addrA.Equal(addrB))

			dataA, err := a.Store().DataAt(i)
			require.NoError(t, err)
			dataB, err := b.Store().DataAt(i)
			require.NoError(t, err)
			assert.Equal(t, dataA, dataB)
		}
	})
}

func TestNewValidation(t *testing.T) {
	t.Run("InvalidDimensions", func(t *testing.T) {
		_, err := New(0, 10)
		var id *ErrInvalidDimensions
		require.ErrorAs(t, err, &id)
		assert.Equal(t, 0, id.Dimensions)
	})

	t.Run("InvalidNumLocations", func(t *testing.T) {
		_, err := New(64, 0)
		var nl *ErrInvalidNumLocations
		require.ErrorAs(t, err, &nl)
		assert.Equal(t, 0, nl.NumLocations)
	})

	t.Run("NegativeFactor", func(t *testing.T) {
		_, err := New(64, 10, WithCriticalDistanceFactor(-0.1))
		assert.Error(t, err)
	})
}

func TestHammingDistance(t *testing.T) {
	d, err := HammingDistance(bitvec.Ones(16), bitvec.New(16))
	require.NoError(t, err)
	assert.Equal(t, 16, d)

	d, err = HammingDistance(bitvec.Ones(16), bitvec.Ones(16))
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = HammingDistance(bitvec.Ones(16), bitvec.Ones(8))
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 16, dm.Expected)
	assert.Equal(t, 8, dm.Actual)
}

func TestMetricsCollection(t *testing.T) {
	ctx := context.Background()
	collector := &BasicMetricsCollector{}

	mem, err := New(64, 100, WithSeed(42), WithMetricsCollector(collector))
	require.NoError(t, err)

	addr, err := mem.Store().AddressAt(0)
	require.NoError(t, err)

	activated, err := mem.Write(ctx, addr, make([]float32, 64))
	require.NoError(t, err)

	_, err = mem.Write(ctx, addr, make([]float32, 8))
	require.Error(t, err)

	_, err = mem.Read(ctx, addr)
	require.NoError(t, err)

	stats := collector.GetStats()
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, int64(1), stats.WriteErrors)
	assert.Equal(t, int64(activated), stats.WriteActivations)
	assert.Equal(t, int64(1), stats.ReadCount)
	assert.Equal(t, int64(0), stats.ReadErrors)
	assert.Equal(t, int64(activated), stats.ReadActivations)
}

func TestBasicMetricsCollectorAverages(t *testing.T) {
	collector := &BasicMetricsCollector{}

	// No samples yet: averages must not divide by zero.
	stats := collector.GetStats()
	assert.Equal(t, int64(0), stats.WriteAvgNanos)
	assert.Equal(t, int64(0), stats.ReadAvgNanos)

	collector.RecordWrite(3, 100, nil)
	collector.RecordWrite(5, 300, nil)

	stats = collector.GetStats()
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, int64(200), stats.WriteAvgNanos)
	assert.Equal(t, int64(8), stats.WriteActivations)
}
