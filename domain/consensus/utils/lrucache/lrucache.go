package lrucache

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// LRUCache is a least-recently-used cache for any type
// that's able to be indexed by DomainHash
type LRUCache struct {
	cache *lru.Cache
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	cache, err := lru.New(capacity)
	if err != nil {
		panic(errors.Wrapf(err, "could not create an LRU cache of capacity %d", capacity))
	}
	return &LRUCache{cache: cache}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	c.cache.Add(*key, value)
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	return c.cache.Get(*key)
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	return c.cache.Contains(*key)
}

// Remove removes the entry for the the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	c.cache.Remove(*key)
}

// Len returns the number of entries in the cache
func (c *LRUCache) Len() int {
	return c.cache.Len()
}
