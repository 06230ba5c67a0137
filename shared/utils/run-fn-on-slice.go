package utils

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunFnOnSliceSingleFailure runs fn concurrently on every element of the
// slice, the first error found is returned
func RunFnOnSliceSingleFailure[T any](slice []T, fn func(T) error) error {
	var group errgroup.Group

	for _, element := range slice {
		element := element
		group.Go(func() error {
			return fn(element)
		})
	}

	return group.Wait()
}

// RunFnOnSliceMultipleFailures runs fn concurrently on every element of the
// slice, errors are returned on the position of the element producing them
func RunFnOnSliceMultipleFailures[T any](slice []T, fn func(T) error) []error {
	errs := make([]error, len(slice))

	var wg sync.WaitGroup
	for index, element := range slice {
		index, element := index, element
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[index] = fn(element)
		}()
	}
	wg.Wait()

	return errs
}
