package utils

import "golang.org/x/exp/constraints"

// AvgOfSlice returns the average of the slice, empty slices average to zero
func AvgOfSlice[T constraints.Integer | constraints.Float](slice []T) float64 {
	if len(slice) == 0 {
		return 0
	}

	var total float64
	for _, element := range slice {
		total += float64(element)
	}

	return total / float64(len(slice))
}

// Min returns the smaller of two values
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}

	return b
}
