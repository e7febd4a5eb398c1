package badger

import "github.com/poiesic/clinquery/storage"

// NewMemoryCache creates an in-memory graph cache for testing.
// The cache owns its backend; Close releases everything.
func NewMemoryCache(opts ...Option) (storage.GraphCache, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return newGraphCache(backend, opts...), nil
}
