package hashes

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

// Less returns true iff hash a is less than hash b
func Less(a, b *externalapi.DomainHash) bool {
	return a.Less(b)
}

// Sort sorts the given hashes in place, in ascending lexicographic order
func Sort(hashes []*externalapi.DomainHash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Less(hashes[j])
	})
}

// SortedCopy returns a sorted clone of the given hashes
func SortedCopy(hashes []*externalapi.DomainHash) []*externalapi.DomainHash {
	clone := externalapi.CloneHashes(hashes)
	Sort(clone)
	return clone
}

// ToStrings converts a slice of hashes into a slice of the corresponding strings
func ToStrings(hashes []*externalapi.DomainHash) []string {
	strings := make([]string, len(hashes))
	for i, hash := range hashes {
		strings[i] = hash.String()
	}
	return strings
}
