package shared

import "errors"

var (
	// ErrNoCacheClientProvided when the cache connection list is empty
	ErrNoCacheClientProvided = errors.New("no cache clients were provided")
	// ErrNoEndpointsFound when the registry has no endpoints to work with
	ErrNoEndpointsFound = errors.New("no endpoints were found in the registry")
)
