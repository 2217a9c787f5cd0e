package model

import "github.com/kaspanet/mergedag/domain/consensus/model/externalapi"

// ReachabilityManager maintains the reachability index and answers
// ancestry queries over it
type ReachabilityManager interface {
	AddBlock(stagingArea *StagingArea, blockHash *externalapi.DomainHash) error
	IsDAGAncestorOf(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsReachabilityTreeAncestorOf(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	LowestCommonTreeAncestor(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error)
	Height(stagingArea *StagingArea, blockHash *externalapi.DomainHash) (uint64, error)
	TreeParent(stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
}

// DAGTopologyManager exposes methods for querying relationships
// between blocks in the DAG
type DAGTopologyManager interface {
	Parents(stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Children(stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	IsParentOf(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsChildOf(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOf(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOfOrEqual(stagingArea *StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOfAny(stagingArea *StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error)
	SetParents(stagingArea *StagingArea, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error
	Tips(stagingArea *StagingArea) []*externalapi.DomainHash
}

// DAGTraversalManager exposes methods for traversing blocks
// in the DAG
type DAGTraversalManager interface {
	InclusivePastUntil(stagingArea *StagingArea, blockHash *externalapi.DomainHash,
		isBoundary func(blockHash *externalapi.DomainHash) (bool, error)) ([]*externalapi.DomainHash, error)
	BranchBlocks(stagingArea *StagingArea, baseHash *externalapi.DomainHash, tipHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	DAGSlice(stagingArea *StagingArea, fromHash *externalapi.DomainHash, depth uint64) ([]*externalapi.DomainHash, error)
	SortByHeight(stagingArea *StagingArea, blockHashes []*externalapi.DomainHash) error
	IndexBlockHeight(stagingArea *StagingArea, blockHash *externalapi.DomainHash) error
}

// ConflictDetector decides whether deploys commute
type ConflictDetector interface {
	ConflictsBetween(eventLogA externalapi.EventLog, eventLogB externalapi.EventLog) bool
	BuildConflictSet(stagingArea *StagingArea, baseHash *externalapi.DomainHash,
		candidates []*externalapi.DomainHash) (*ConflictSet, error)
}

// Merger combines the effects of sibling blocks
type Merger interface {
	Merge(stagingArea *StagingArea, baseHash *externalapi.DomainHash, candidates []*externalapi.DomainHash,
		weights map[externalapi.DomainHash]uint64, conflictSet *ConflictSet) (*externalapi.MergeResult, error)
	MergeParents(stagingArea *StagingArea, header *externalapi.DomainBlockHeader) (*externalapi.MergeResult, error)
}

// ForkChoiceManager selects the canonical tip of the DAG
type ForkChoiceManager interface {
	ChooseTip(stagingArea *StagingArea, latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash) (*externalapi.DomainHash, error)
	CurrentTip(stagingArea *StagingArea) (*externalapi.DomainHash, error)
	HonestLatestMessages(stagingArea *StagingArea) map[externalapi.ValidatorID]*externalapi.DomainHash
}

// FinalityManager advances the finalized fringe
type FinalityManager interface {
	AdvanceFinality(stagingArea *StagingArea, faultTolerance float64) ([]*externalapi.DomainHash, error)
}

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type BlockValidator interface {
	ValidateBlockShape(block *externalapi.DomainBlock) error
	ValidateBlockInIsolation(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog) error
	ValidateBlockInContext(stagingArea *StagingArea, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error
	ValidateExecution(stagingArea *StagingArea, block *externalapi.DomainBlock,
		eventLogs []externalapi.EventLog, preStateCommitment *externalapi.DomainHash) error
}

// BlockProcessor is responsible for processing incoming blocks
type BlockProcessor interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog,
		isolationValidated bool) (*externalapi.BlockInsertionResult, error)
	InsertGenesisIfNeeded(genesis *externalapi.DomainBlock) error
}
