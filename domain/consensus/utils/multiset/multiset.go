package multiset

import (
	"github.com/kaspanet/go-muhash"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Multiset is an order-independent hash accumulator over byte elements.
// Adding and then removing an element leaves the hash unchanged.
type Multiset struct {
	ms *muhash.MuHash
}

// New returns a new, empty Multiset
func New() *Multiset {
	return &Multiset{ms: muhash.NewMuHash()}
}

// Add adds data to the multiset
func (m *Multiset) Add(data []byte) {
	m.ms.Add(data)
}

// Remove removes data from the multiset
func (m *Multiset) Remove(data []byte) {
	m.ms.Remove(data)
}

// Hash returns the hash of the multiset
func (m *Multiset) Hash() *externalapi.DomainHash {
	finalizedHash := m.ms.Finalize()
	return externalapi.NewDomainHashFromByteArray(finalizedHash.AsArray())
}

// Serialize returns the serialized form of the multiset
func (m *Multiset) Serialize() []byte {
	return m.ms.Serialize()[:]
}

// Clone returns a clone of the multiset
func (m *Multiset) Clone() *Multiset {
	return &Multiset{ms: m.ms.Clone()}
}

// FromBytes deserializes the given bytes slice and returns a multiset.
func FromBytes(multisetBytes []byte) (*Multiset, error) {
	serialized := &muhash.SerializedMuHash{}
	if len(serialized) != len(multisetBytes) {
		return nil, errors.Errorf("mutliset bytes expected to be in length of %d but got %d",
			len(serialized), len(multisetBytes))
	}
	copy(serialized[:], multisetBytes)
	ms, err := muhash.DeserializeMuHash(serialized)
	if err != nil {
		return nil, err
	}

	return &Multiset{ms: ms}, nil
}
