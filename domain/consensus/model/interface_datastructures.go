package model

import "github.com/kaspanet/mergedag/domain/consensus/model/externalapi"

// BlockStore represents a store of blocks
type BlockStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock)
	IsStaged(stagingArea *StagingArea) bool
	Block(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	HasBlock(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	Blocks(dbContext DBReader, stagingArea *StagingArea, blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainBlock, error)
	Count(stagingArea *StagingArea) uint64
	DeployCount(stagingArea *StagingArea) uint64
}

// EventLogStore represents a store of per-deploy event logs
type EventLogStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, eventLogs []externalapi.EventLog)
	EventLogs(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) ([]externalapi.EventLog, error)
}

// BlockRelationStore represents a store of BlockRelations
type BlockRelationStore interface {
	StageBlockRelation(stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockRelations *BlockRelations)
	BlockRelation(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*BlockRelations, error)
	Has(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}

// ReachabilityDataStore represents a store of ReachabilityData
type ReachabilityDataStore interface {
	StageReachabilityData(stagingArea *StagingArea, blockHash *externalapi.DomainHash, reachabilityData *ReachabilityData)
	ReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*ReachabilityData, error)
	HasReachabilityData(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
	ForEach(dbContext DBReader, f func(blockHash *externalapi.DomainHash, reachabilityData *ReachabilityData) error) error
}

// BlockStatusStore represents a store of BlockStatuses
type BlockStatusStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, blockStatus externalapi.BlockStatus)
	Get(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error)
	Exists(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (bool, error)
}

// ValidatorStore keeps the per-validator tables: the block each validator
// signed at each sequence number, each validator's latest message, and the
// equivocation evidence seen against each validator
type ValidatorStore interface {
	StageBlockAtSequence(stagingArea *StagingArea, validator externalapi.ValidatorID, sequenceNumber uint64, blockHash *externalapi.DomainHash)
	BlockAtSequence(dbContext DBReader, stagingArea *StagingArea, validator externalapi.ValidatorID, sequenceNumber uint64) (*externalapi.DomainHash, bool, error)

	StageLatestMessage(stagingArea *StagingArea, validator externalapi.ValidatorID, blockHash *externalapi.DomainHash)
	LatestMessage(stagingArea *StagingArea, validator externalapi.ValidatorID) (*externalapi.DomainHash, bool)
	LatestMessages(stagingArea *StagingArea) map[externalapi.ValidatorID]*externalapi.DomainHash

	StageEquivocation(stagingArea *StagingArea, validator externalapi.ValidatorID, sequenceNumber uint64, blockHashes ...*externalapi.DomainHash)
	Equivocations(stagingArea *StagingArea, validator externalapi.ValidatorID) []*Equivocation
	IsEquivocator(stagingArea *StagingArea, validator externalapi.ValidatorID) bool
	Equivocators(stagingArea *StagingArea) []externalapi.ValidatorID
}

// FinalityStore represents the append-only finalized fringe log
type FinalityStore interface {
	StageFinalized(stagingArea *StagingArea, blockHashes []*externalapi.DomainHash)
	IsFinalized(stagingArea *StagingArea, blockHash *externalapi.DomainHash) bool
	FinalizedFringe(stagingArea *StagingArea) []*externalapi.DomainHash
	LastFinalized(stagingArea *StagingArea) (*externalapi.DomainHash, bool)
}

// PreStateStore represents a store of the combined pre-state commitment
// each block was built on
type PreStateStore interface {
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, commitment *externalapi.DomainHash)
	PreState(dbContext DBReader, stagingArea *StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
}

// TipsStore represents a store of the DAG tips
type TipsStore interface {
	StageTips(stagingArea *StagingArea, tipHashes []*externalapi.DomainHash)
	Tips(stagingArea *StagingArea) []*externalapi.DomainHash
	HasTips(stagingArea *StagingArea) bool
}
