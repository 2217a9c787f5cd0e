package externalapi

// BlockInsertionResult is auxiliary data returned from ValidateAndInsertBlock
type BlockInsertionResult struct {
	BlockHash   *DomainHash
	MergeResult *MergeResult

	// Tip is the fork-choice tip after the insertion
	Tip *DomainHash

	// FinalizedDelta are the blocks that became final due to this insertion,
	// ordered by height and then by hash
	FinalizedDelta []*DomainHash
}

// SubmitResult is the per-block outcome of a batch submission
type SubmitResult struct {
	BlockHash       *DomainHash
	InsertionResult *BlockInsertionResult
	Err             error
}
