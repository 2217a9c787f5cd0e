package externalapi

// MergeResult is the outcome of merging a block's parents
type MergeResult struct {
	// Base is the nearest common selected-parent-tree ancestor of the candidates
	Base *DomainHash

	// Selected are the candidates whose effects were kept, in hash order
	Selected []*DomainHash

	// Rejected are the candidates excluded due to conflicts or equivocation, in hash order
	Rejected []*DomainHash

	// RejectedDeploys are the IDs of the deploys whose effects were excluded
	RejectedDeploys []*DomainHash

	PostStateCommitment *DomainHash
}

// Clone returns a clone of MergeResult
func (mr *MergeResult) Clone() *MergeResult {
	return &MergeResult{
		Base:                mr.Base,
		Selected:            CloneHashes(mr.Selected),
		Rejected:            CloneHashes(mr.Rejected),
		RejectedDeploys:     CloneHashes(mr.RejectedDeploys),
		PostStateCommitment: mr.PostStateCommitment,
	}
}

// Equal returns whether mr equals to other
func (mr *MergeResult) Equal(other *MergeResult) bool {
	if mr == nil || other == nil {
		return mr == other
	}
	return mr.Base.Equal(other.Base) &&
		HashesEqual(mr.Selected, other.Selected) &&
		HashesEqual(mr.Rejected, other.Rejected) &&
		HashesEqual(mr.RejectedDeploys, other.RejectedDeploys) &&
		mr.PostStateCommitment.Equal(other.PostStateCommitment)
}
