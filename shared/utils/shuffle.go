package utils

import "math/rand"

// Shuffle returns a copy of the slice with its elements in random order,
// the slice given is left untouched
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
