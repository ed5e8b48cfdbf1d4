package cache

import (
	"fmt"
)

// CacheError wraps a failed Redis call. Callers treat it as a miss, never as a request failure.
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func NewCacheError(operation, key string, err error) *CacheError {
	return &CacheError{Operation: operation, Key: key, Err: err}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %s failed: %v", e.Operation, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
