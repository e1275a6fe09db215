// Package cache provides a generic, thread-safe memoization cache.
//
// The cache has no eviction policy: entries live until explicitly deleted or
// cleared. Statistics are always collected for observability and can
// optionally be exposed as Prometheus metrics via functional options. The
// semantic resolver uses it to memoize concept reachability results, where
// the working set is bounded by the number of distinct concept pairs seen in
// one process lifetime.
package cache

import (
	"github.com/c360/semschema/errors"
)

// Cache represents a generic cache interface parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key. Returns true if a new entry was
	// created, false if an existing entry was updated.
	Set(key string, value V) (bool, error)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries in the cache.
	Size() int

	// Keys returns a slice of all keys currently in the cache.
	Keys() []string

	// Stats returns cache statistics.
	Stats() *Statistics
}

// validateKey validates a cache key for basic requirements.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
