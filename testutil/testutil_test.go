package testutil

import (
	"testing"

	"github.com/hupe1980/sdmgo/bitvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
}

func TestAddress(t *testing.T) {
	rng := NewRNG(4711)

	addr := rng.Address(100)
	assert.Equal(t, 100, addr.Len())

	ones := addr.OnesCount()
	assert.Greater(t, ones, 0)
	assert.Less(t, ones, 100)
}

func TestAddresses(t *testing.T) {
	rng := NewRNG(4711)

	addrs := rng.Addresses(5, 64)
	require.Len(t, addrs, 5)
	for _, a := range addrs {
		assert.Equal(t, 64, a.Len())
	}
}

func TestFlipBits(t *testing.T) {
	rng := NewRNG(42)

	addr := rng.Address(256)

	t.Run("ExactDistance", func(t *testing.T) {
		noisy := rng.FlipBits(addr, 17)

		d, err := bitvec.Hamming(addr, noisy)
		require.NoError(t, err)
		assert.Equal(t, 17, d)
	})

	t.Run("OriginalUntouched", func(t *testing.T) {
		before := addr.Clone()
		_ = rng.FlipBits(addr, 10)
		assert.True(t, addr.Equal(before))
	})

	t.Run("ZeroBits", func(t *testing.T) {
		same := rng.FlipBits(addr, 0)
		assert.True(t, addr.Equal(same))
	})

	t.Run("MoreThanLen", func(t *testing.T) {
		inverted := rng.FlipBits(addr, 1000)

		d, err := bitvec.Hamming(addr, inverted)
		require.NoError(t, err)
		assert.Equal(t, 256, d)
	})
}
