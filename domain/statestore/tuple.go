package statestore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/multiset"
	"github.com/pkg/errors"
)

type tupleKind byte

const (
	datumTuple tupleKind = iota
	continuationTuple
)

// tuple is a single entry of a tuplespace: either a datum sent on a channel
// or a continuation waiting on it
type tuple struct {
	kind       tupleKind
	channel    externalapi.DomainHash
	value      externalapi.DomainHash
	persistent bool
}

func (t tuple) less(other tuple) bool {
	if t.value != other.value {
		return t.value.Less(&other.value)
	}
	return !t.persistent && other.persistent
}

func (t tuple) serialize() []byte {
	serialized := make([]byte, 0, 2+2*externalapi.DomainHashSize)
	serialized = append(serialized, byte(t.kind))
	serialized = append(serialized, t.channel.ByteSlice()...)
	serialized = append(serialized, t.value.ByteSlice()...)
	if t.persistent {
		return append(serialized, 1)
	}
	return append(serialized, 0)
}

func (t tuple) produce() *externalapi.Produce {
	channel, value := t.channel, t.value
	return &externalapi.Produce{Channel: &channel, DataHash: &value, Persistent: t.persistent}
}

func (t tuple) consume() *externalapi.Consume {
	channel, value := t.channel, t.value
	return &externalapi.Consume{
		Channels:    []*externalapi.DomainHash{&channel},
		PatternHash: &value,
		Persistent:  t.persistent,
	}
}

// tupleCollection is a multiset of tuples
type tupleCollection map[tuple]uint64

func (tc tupleCollection) add(t tuple, count uint64) {
	tc[t] += count
}

func (tc tupleCollection) remove(t tuple, count uint64) error {
	current := tc[t]
	if current < count {
		return errors.Errorf("cannot remove %d instances of a tuple which appears %d times", count, current)
	}
	if current == count {
		delete(tc, t)
		return nil
	}
	tc[t] = current - count
	return nil
}

func (tc tupleCollection) clone() tupleCollection {
	clone := make(tupleCollection, len(tc))
	for t, count := range tc {
		clone[t] = count
	}
	return clone
}

// smallestOn returns the smallest tuple of the given kind on channel
func (tc tupleCollection) smallestOn(kind tupleKind, channel *externalapi.DomainHash) (tuple, bool) {
	var smallest tuple
	found := false
	for t := range tc {
		if t.kind != kind || t.channel != *channel {
			continue
		}
		if !found || t.less(smallest) {
			smallest = t
			found = true
		}
	}
	return smallest, found
}

// withDelta returns a copy of tc with the difference between to and from
// applied to it
func (tc tupleCollection) withDelta(from, to tupleCollection) (tupleCollection, error) {
	result := tc.clone()
	for t, toCount := range to {
		fromCount := from[t]
		if toCount > fromCount {
			result.add(t, toCount-fromCount)
		}
	}
	for t, fromCount := range from {
		toCount := to[t]
		if fromCount > toCount {
			err := result.remove(t, fromCount-toCount)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// commitment returns the multiset hash of the collection. The empty
// collection commits to the zero hash.
func (tc tupleCollection) commitment() *externalapi.DomainHash {
	if len(tc) == 0 {
		return externalapi.NewZeroHash()
	}
	ms := multiset.New()
	for t, count := range tc {
		serialized := t.serialize()
		for i := uint64(0); i < count; i++ {
			ms.Add(serialized)
		}
	}
	return ms.Hash()
}

func (tc tupleCollection) String() string {
	entries := make([]string, 0, len(tc))
	for t, count := range tc {
		kind := "datum"
		if t.kind == continuationTuple {
			kind = "continuation"
		}
		entries = append(entries, fmt.Sprintf("%s(%s, %s, persistent: %t) x%d",
			kind, t.channel, t.value, t.persistent, count))
	}
	sort.Strings(entries)
	return "[ " + strings.Join(entries, ", ") + " ]"
}
