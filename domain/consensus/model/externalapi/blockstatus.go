package externalapi

// BlockStatus represents the validation state of the block.
type BlockStatus byte

const (
	// StatusInvalid indicates that the block is invalid and permanently rejected.
	StatusInvalid BlockStatus = iota

	// StatusIndexed indicates that the block was validated and added to the DAG,
	// but has not yet been a candidate of any merge.
	StatusIndexed

	// StatusEquivocating indicates that the block's sender signed another block
	// with the same sequence number. The block is kept for evidence and excluded
	// from all merges.
	StatusEquivocating

	// StatusMerged indicates that the block's effects were selected by some merge.
	StatusMerged

	// StatusMergeRejected indicates that the block was excluded by a merge due
	// to conflicts and was never selected by another one.
	StatusMergeRejected

	// StatusFinalized indicates that the block is in the finalized fringe.
	StatusFinalized
)

var blockStatusStrings = map[BlockStatus]string{
	StatusInvalid:       "Invalid",
	StatusIndexed:       "Indexed",
	StatusEquivocating:  "Equivocating",
	StatusMerged:        "Merged",
	StatusMergeRejected: "MergeRejected",
	StatusFinalized:     "Finalized",
}

func (bs BlockStatus) String() string {
	return blockStatusStrings[bs]
}
