package random

import (
	"github.com/stretchr/testify/require"
	"testing"
)

// TestFloat64_ReturnsValidRange verifies that Float64 returns values in [0, 1).
func TestFloat64_ReturnsValidRange(t *testing.T) {
	src := New(1)
	for i := 0; i < 1000; i++ {
		val := src.Float64()
		require.GreaterOrEqual(t, val, 0.0)
		require.Less(t, val, 1.0)
	}
}

// TestFloat64_Distribution verifies that Float64 produces diverse values.
func TestFloat64_Distribution(t *testing.T) {
	src := New(42)
	buckets := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		buckets[uint64(src.Float64()*1000)] = true
	}
	require.Greater(t, len(buckets), 50)
}

// TestNew_Deterministic verifies that equal seeds yield equal sequences and different seeds diverge.
func TestNew_Deterministic(t *testing.T) {
	a, b, c := New(7), New(7), New(8)

	var diverged bool
	for i := 0; i < 32; i++ {
		x := a.Uint64()
		require.Equal(t, x, b.Uint64())
		if x != c.Uint64() {
			diverged = true
		}
	}
	require.True(t, diverged)
}

// TestIntN_Bounds verifies that IntN stays within [0,n) and covers the range.
func TestIntN_Bounds(t *testing.T) {
	src := New(3)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := src.IntN(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		seen[v] = true
	}
	require.Len(t, seen, 5)
	require.Panics(t, func() { src.IntN(0) })
}
