package consensus

import (
	consensusdatabase "github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/blockrelationstore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/blockstatusstore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/blockstore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/eventlogstore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/finalitystore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/prestatestore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/tipsstore"
	"github.com/kaspanet/mergedag/domain/consensus/datastructures/validatorstore"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/processes/blockprocessor"
	"github.com/kaspanet/mergedag/domain/consensus/processes/blockvalidator"
	"github.com/kaspanet/mergedag/domain/consensus/processes/conflictdetector"
	"github.com/kaspanet/mergedag/domain/consensus/processes/dagtopologymanager"
	"github.com/kaspanet/mergedag/domain/consensus/processes/dagtraversalmanager"
	"github.com/kaspanet/mergedag/domain/consensus/processes/finalitymanager"
	"github.com/kaspanet/mergedag/domain/consensus/processes/forkchoicemanager"
	"github.com/kaspanet/mergedag/domain/consensus/processes/merger"
	"github.com/kaspanet/mergedag/domain/consensus/processes/reachabilitymanager"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/kaspanet/mergedag/infrastructure/db/database"
	"github.com/kaspanet/mergedag/infrastructure/metrics"
	"github.com/kaspanet/mergedag/util/prioritylock"
	"github.com/pkg/errors"
)

// Config holds the network parameters of a consensus together with its
// collaborators
type Config struct {
	*dagconfig.Params

	// StateStore holds the execution states that merges are computed over.
	// It is required.
	StateStore externalapi.StateStore

	// Executor replays the deploys of incoming blocks. If it is nil the
	// supplied event logs and post-state commitments are trusted.
	Executor externalapi.Executor

	// PatternMatcher refines conflict detection. It may be nil.
	PatternMatcher externalapi.PatternMatcher

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Factory instantiates new Consensuses
type Factory interface {
	NewConsensus(config *Config, db database.Database) (externalapi.Consensus, error)
	NewTestConsensus(config *Config, testName string) (tc externalapi.Consensus, teardown func(keepDataDir bool), err error)
}

type factory struct{}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{}
}

// NewConsensus instantiates a new Consensus over db and inserts the
// network's genesis if db is empty
func (f *factory) NewConsensus(config *Config, db database.Database) (externalapi.Consensus, error) {
	c, err := f.newConsensus(config, db)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (f *factory) newConsensus(config *Config, db database.Database) (*consensus, error) {
	if config.Params == nil {
		return nil, errors.New("consensus config has no network parameters")
	}
	err := config.Params.Validate()
	if err != nil {
		return nil, err
	}
	if config.StateStore == nil {
		return nil, errors.New("consensus config has no state store")
	}

	dbManager := consensusdatabase.New(db)
	cacheSize := config.CacheSize

	// Data Structures
	blockStore, err := blockstore.New(dbManager, cacheSize)
	if err != nil {
		return nil, err
	}
	eventLogStore := eventlogstore.New(cacheSize)
	blockRelationStore := blockrelationstore.New(cacheSize)
	reachabilityDataStore := reachabilitydatastore.New(cacheSize)
	blockStatusStore := blockstatusstore.New(cacheSize)
	preStateStore := prestatestore.New(cacheSize)
	tipsStore, err := tipsstore.New(dbManager)
	if err != nil {
		return nil, err
	}
	validatorStore, err := validatorstore.New(dbManager)
	if err != nil {
		return nil, err
	}
	finalityStore, err := finalitystore.New(dbManager)
	if err != nil {
		return nil, err
	}

	// Processes
	reachabilityManager := reachabilitymanager.New(
		dbManager,
		blockRelationStore,
		reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(
		dbManager,
		reachabilityManager,
		blockRelationStore,
		tipsStore)
	dagTraversalManager, err := dagtraversalmanager.New(
		dbManager,
		dagTopologyManager,
		reachabilityManager,
		reachabilityDataStore)
	if err != nil {
		return nil, err
	}
	conflictDetector := conflictdetector.New(
		dbManager,
		blockStore,
		eventLogStore,
		dagTraversalManager,
		config.PatternMatcher,
		config.ConflictWorkers)
	dagMerger := merger.New(
		dbManager,
		blockStore,
		validatorStore,
		reachabilityManager,
		dagTopologyManager,
		conflictDetector,
		config.StateStore,
		config.MaxExactMergeCandidates)
	forkChoiceManager := forkchoicemanager.New(
		dbManager,
		blockStore,
		validatorStore,
		finalityStore,
		dagTopologyManager)
	finalityManager := finalitymanager.New(
		dbManager,
		blockStore,
		blockStatusStore,
		finalityStore,
		reachabilityManager,
		dagTopologyManager,
		dagTraversalManager,
		forkChoiceManager)

	blockValidator := blockvalidator.New(
		config.GenesisHash,
		config.SkipSignatureChecks,
		config.MaxBlockParents,
		config.MaxDeploysPerBlock,

		dbManager,
		dagTopologyManager,
		config.Executor,
		config.StateStore,

		blockStore,
		blockStatusStore,
		validatorStore)
	blockProcessor := blockprocessor.New(
		config.GenesisHash,
		config.FaultTolerance,
		dbManager,

		blockValidator,
		dagTopologyManager,
		reachabilityManager,
		dagTraversalManager,
		dagMerger,
		forkChoiceManager,
		finalityManager,

		blockStore,
		eventLogStore,
		blockStatusStore,
		validatorStore,
		preStateStore,
		finalityStore)

	c := &consensus{
		lock:            prioritylock.New(),
		databaseContext: dbManager,
		genesisHash:     config.GenesisHash,
		metrics:         config.Metrics,

		blockProcessor:      blockProcessor,
		blockValidator:      blockValidator,
		dagTopologyManager:  dagTopologyManager,
		dagTraversalManager: dagTraversalManager,
		reachabilityManager: reachabilityManager,
		merger:              dagMerger,
		forkChoiceManager:   forkChoiceManager,

		blockStore:       blockStore,
		eventLogStore:    eventLogStore,
		blockStatusStore: blockStatusStore,
		validatorStore:   validatorStore,
		finalityStore:    finalityStore,
		preStateStore:    preStateStore,
	}

	err = blockProcessor.InsertGenesisIfNeeded(config.GenesisBlock)
	if err != nil {
		return nil, err
	}

	return c, nil
}
