package externalapi

// BlockInfo contains various information about a specific block
type BlockInfo struct {
	Exists      bool
	BlockStatus BlockStatus
	Height      uint64

	// PreStateCommitment is the combined state the block was executed on,
	// which is the post-state of the merge of its parents
	PreStateCommitment *DomainHash
}

// Clone returns a clone of BlockInfo
func (bi *BlockInfo) Clone() *BlockInfo {
	return &BlockInfo{
		Exists:             bi.Exists,
		BlockStatus:        bi.BlockStatus,
		Height:             bi.Height,
		PreStateCommitment: bi.PreStateCommitment,
	}
}
