package externalapi

// Consensus maintains the current core state of the node
type Consensus interface {
	SubmitBlock(block *DomainBlock, eventLogs []EventLog) (*BlockInsertionResult, error)
	SubmitBlocks(bundles []*BlockBundle) []*SubmitResult

	CurrentTip() (*DomainHash, error)

	// FinalizedFringe returns every finalized block in finalization order.
	// Finalizing a block settles its whole past, so the log also holds the
	// equivocating blocks of that past. Those keep StatusEquivocating and
	// their deploys stay rejected.
	FinalizedFringe() ([]*DomainHash, error)
	DAGSlice(fromHash *DomainHash, depth uint64) ([]*DomainBlock, error)

	GetBlock(blockHash *DomainHash) (*DomainBlock, error)
	GetBlockInfo(blockHash *DomainHash) (*BlockInfo, error)
	GetEventLogs(blockHash *DomainHash) ([]EventLog, error)
	GetParents(blockHash *DomainHash) ([]*DomainHash, error)
	GetChildren(blockHash *DomainHash) ([]*DomainHash, error)
	IsAncestorOf(blockHashA, blockHashB *DomainHash) (bool, error)
	JustificationFrontier(validators []ValidatorID) (map[ValidatorID]*DomainHash, error)
	Tips() ([]*DomainHash, error)
	MergeResultFor(blockHash *DomainHash) (*MergeResult, error)
	Equivocators() ([]ValidatorID, error)

	// MergeParents merges the parents named by header, the way the block
	// carrying header would be merged. Block producers execute their deploys
	// on the post-state of the result.
	MergeParents(header *DomainBlockHeader) (*MergeResult, error)
}
