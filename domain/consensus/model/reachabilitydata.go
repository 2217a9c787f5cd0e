package model

import "github.com/kaspanet/mergedag/domain/consensus/model/externalapi"

// ReachabilityData holds the per-block index used to answer ancestry
// queries in sub-linear time.
//
// The selected-parent tree is the tree formed by each block's first parent.
// SkipPointers[k] is the 2^k-th ancestor of the block in that tree.
//
// FutureCoveringSet holds blocks C such that this block is in the merge
// set of C. A block A is a DAG ancestor of B iff A is a tree ancestor of B
// or some member of A's future covering set is a tree ancestor of B
// (inclusive).
type ReachabilityData struct {
	TreeParent        *externalapi.DomainHash
	Depth             uint64
	Height            uint64
	SkipPointers      []*externalapi.DomainHash
	FutureCoveringSet []*externalapi.DomainHash
}

// Clone returns a clone of ReachabilityData
func (rd *ReachabilityData) Clone() *ReachabilityData {
	return &ReachabilityData{
		TreeParent:        rd.TreeParent,
		Depth:             rd.Depth,
		Height:            rd.Height,
		SkipPointers:      externalapi.CloneHashes(rd.SkipPointers),
		FutureCoveringSet: externalapi.CloneHashes(rd.FutureCoveringSet),
	}
}
