package cache

import "errors"

var (
	// ErrKeyDoesNotExist when the requested key is not on the instance
	ErrKeyDoesNotExist = errors.New("key does not exist")
	// ErrEmptyValue when the key is present but holds an empty value
	ErrEmptyValue = errors.New("value from key is empty")
)
