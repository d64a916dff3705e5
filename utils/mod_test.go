package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgMax(t *testing.T) {
	t.Run("picking the first of tied maxima", func(t *testing.T) {
		got := ArgMax([]float64{0.2, 0.9, 0.9, 0.1}, func(v float64) float64 { return v })

		require.Equal(t, 1, got, "Should return the first index holding the max key")
	})

	t.Run("empty input", func(t *testing.T) {
		got := ArgMax([]int{}, func(v int) int { return v })

		require.Equal(t, -1, got, "Should return -1 when there is nothing to compare")
	})
}

func TestFindIndex(t *testing.T) {
	require.Equal(t, 2, FindIndex([]string{"a", "b", "c"}, "c"), "Should find the item")
	require.Equal(t, -1, FindIndex([]string{"a"}, "z"), "Should report a missing item")
}

func TestNewRand(t *testing.T) {
	a, b := NewRand(9), NewRand(9)
	for i := 0; i < 5; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "Should replay the same stream for the same seed")
	}
	require.NotZero(t, FreshSeed(), "Should never hand out the seed that means 'draw one'")
}
