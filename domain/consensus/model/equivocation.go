package model

import "github.com/kaspanet/mergedag/domain/consensus/model/externalapi"

// Equivocation is the evidence that a validator signed more than one block
// with the same sequence number. Blocks holds every such block seen so far,
// in the order they arrived.
type Equivocation struct {
	SequenceNumber uint64
	Blocks         []*externalapi.DomainHash
}

// Clone returns a clone of Equivocation
func (e *Equivocation) Clone() *Equivocation {
	return &Equivocation{
		SequenceNumber: e.SequenceNumber,
		Blocks:         externalapi.CloneHashes(e.Blocks),
	}
}
