package hashset

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

// HashSet is an unsorted unique collection of DomainHashes
type HashSet map[externalapi.DomainHash]struct{}

// New creates and returns an empty HashSet
func New() HashSet {
	return HashSet{}
}

// NewFromSlice creates and returns a HashSet with the given hashes
func NewFromSlice(hashes ...*externalapi.DomainHash) HashSet {
	set := New()
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

// Add adds a hash to this HashSet
func (hs HashSet) Add(hash *externalapi.DomainHash) {
	hs[*hash] = struct{}{}
}

// Remove removes the given hash from the HashSet
func (hs HashSet) Remove(hash *externalapi.DomainHash) {
	delete(hs, *hash)
}

// Contains returns true if this HashSet contains the given hash
func (hs HashSet) Contains(hash *externalapi.DomainHash) bool {
	_, ok := hs[*hash]
	return ok
}

// Length returns the amount of items in this HashSet
func (hs HashSet) Length() int {
	return len(hs)
}

// Subtract returns the hashes in this set that are not in other
func (hs HashSet) Subtract(other HashSet) HashSet {
	diff := New()
	for hash := range hs {
		if !other.Contains(&hash) {
			diff.Add(&hash)
		}
	}
	return diff
}

// ToSlice converts this HashSet to a slice, sorted by hash
func (hs HashSet) ToSlice() []*externalapi.DomainHash {
	slice := make([]*externalapi.DomainHash, 0, len(hs))
	for hash := range hs {
		hash := hash
		slice = append(slice, &hash)
	}
	hashes.Sort(slice)
	return slice
}
