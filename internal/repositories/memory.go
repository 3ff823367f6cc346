package repositories

import (
	"github.com/patrickmn/go-cache"
)

// MemoryBackend implements [Backend] with an in-process [cache.Cache] whose entries never expire.
//
// State held here lasts for the lifetime of the process only.
type MemoryBackend struct {
	cache *cache.Cache
}

// NewMemoryBackend creates an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the bytes stored under key.
func (b *MemoryBackend) Get(key string) ([]byte, bool, error) {
	v, found := b.cache.Get(key)
	if !found {
		return nil, false, nil
	}

	data, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of value under key.
func (b *MemoryBackend) Set(key string, value []byte) error {
	b.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(key string) error {
	b.cache.Delete(key)
	return nil
}

// Keys lists stored keys in ascending order.
func (b *MemoryBackend) Keys() ([]string, error) {
	items := b.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return sortedKeys(keys), nil
}
