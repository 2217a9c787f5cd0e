package lrucache

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

func TestLRUCacheEviction(t *testing.T) {
	cache := New(2)
	a := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	b := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	c := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{3})

	cache.Add(a, "a")
	cache.Add(b, "b")
	// Touch a so that b becomes the least recently used entry
	if value, ok := cache.Get(a); !ok || value.(string) != "a" {
		t.Fatalf("TestLRUCacheEviction: expected to find a")
	}
	cache.Add(c, "c")

	if cache.Has(b) {
		t.Fatalf("TestLRUCacheEviction: b should have been evicted")
	}
	if !cache.Has(a) || !cache.Has(c) {
		t.Fatalf("TestLRUCacheEviction: a and c should be cached")
	}

	cache.Remove(a)
	if cache.Has(a) || cache.Len() != 1 {
		t.Fatalf("TestLRUCacheEviction: a should have been removed")
	}
}
