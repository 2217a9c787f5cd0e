package blockprocessor

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

// blockProcessor is responsible for processing incoming blocks
type blockProcessor struct {
	genesisHash     *externalapi.DomainHash
	faultTolerance  float64
	databaseContext model.DBManager

	blockValidator      model.BlockValidator
	dagTopologyManager  model.DAGTopologyManager
	reachabilityManager model.ReachabilityManager
	dagTraversalManager model.DAGTraversalManager
	merger              model.Merger
	forkChoiceManager   model.ForkChoiceManager
	finalityManager     model.FinalityManager

	blockStore       model.BlockStore
	eventLogStore    model.EventLogStore
	blockStatusStore model.BlockStatusStore
	validatorStore   model.ValidatorStore
	preStateStore    model.PreStateStore
	finalityStore    model.FinalityStore
}

// New instantiates a new BlockProcessor
func New(
	genesisHash *externalapi.DomainHash,
	faultTolerance float64,
	databaseContext model.DBManager,

	blockValidator model.BlockValidator,
	dagTopologyManager model.DAGTopologyManager,
	reachabilityManager model.ReachabilityManager,
	dagTraversalManager model.DAGTraversalManager,
	merger model.Merger,
	forkChoiceManager model.ForkChoiceManager,
	finalityManager model.FinalityManager,

	blockStore model.BlockStore,
	eventLogStore model.EventLogStore,
	blockStatusStore model.BlockStatusStore,
	validatorStore model.ValidatorStore,
	preStateStore model.PreStateStore,
	finalityStore model.FinalityStore,
) model.BlockProcessor {

	return &blockProcessor{
		genesisHash:     genesisHash,
		faultTolerance:  faultTolerance,
		databaseContext: databaseContext,

		blockValidator:      blockValidator,
		dagTopologyManager:  dagTopologyManager,
		reachabilityManager: reachabilityManager,
		dagTraversalManager: dagTraversalManager,
		merger:              merger,
		forkChoiceManager:   forkChoiceManager,
		finalityManager:     finalityManager,

		blockStore:       blockStore,
		eventLogStore:    eventLogStore,
		blockStatusStore: blockStatusStore,
		validatorStore:   validatorStore,
		preStateStore:    preStateStore,
		finalityStore:    finalityStore,
	}
}
