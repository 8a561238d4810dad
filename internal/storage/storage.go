// Package storage provides the persistent key/value text storage the cache
// and rate limiter sit on. It is the service-side analog of the browser's
// localStorage: string keys, JSON-serialized string values, no schema.
package storage

// Store is a flat key/value text store. Implementations must be safe for
// use from a single goroutine at a time; the pipeline never accesses
// storage concurrently.
type Store interface {
	// Get returns the value for key, and whether the key exists.
	Get(key string) (string, bool, error)
	// Set writes or overwrites the value for key.
	Set(key string, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Keys returns every key in the store, in no particular order.
	Keys() ([]string, error)
	// Close releases underlying resources.
	Close() error
}
