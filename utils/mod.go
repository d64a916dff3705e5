package utils

import "golang.org/x/exp/constraints"

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

// ArgMax returns the index of the first item with the largest key, or -1 for an empty slice.
func ArgMax[T any, K constraints.Ordered](items []T, key func(T) K) int {
	best := -1
	var bestKey K
	for i, item := range items {
		k := key(item)
		if best < 0 || k > bestKey {
			best = i
			bestKey = k
		}
	}
	return best
}
