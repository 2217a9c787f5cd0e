package blockvalidator

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	genesisHash         *externalapi.DomainHash
	skipSignatureChecks bool
	maxBlockParents     int
	maxDeploysPerBlock  int

	databaseContext    model.DBReader
	dagTopologyManager model.DAGTopologyManager
	executor           externalapi.Executor
	stateStore         externalapi.StateStore

	blockStore       model.BlockStore
	blockStatusStore model.BlockStatusStore
	validatorStore   model.ValidatorStore
}

// New instantiates a new BlockValidator. executor may be nil, in which case
// the event logs supplied with a block are trusted as-is.
func New(genesisHash *externalapi.DomainHash,
	skipSignatureChecks bool,
	maxBlockParents int,
	maxDeploysPerBlock int,
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	executor externalapi.Executor,
	stateStore externalapi.StateStore,
	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	validatorStore model.ValidatorStore,
) model.BlockValidator {

	return &blockValidator{
		genesisHash:         genesisHash,
		skipSignatureChecks: skipSignatureChecks,
		maxBlockParents:     maxBlockParents,
		maxDeploysPerBlock:  maxDeploysPerBlock,
		databaseContext:     databaseContext,
		dagTopologyManager:  dagTopologyManager,
		executor:            executor,
		stateStore:          stateStore,
		blockStore:          blockStore,
		blockStatusStore:    blockStatusStore,
		validatorStore:      validatorStore,
	}
}
