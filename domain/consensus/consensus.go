package consensus

import (
	"runtime"
	"time"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/infrastructure/metrics"
	"github.com/kaspanet/mergedag/util/prioritylock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownBlock is returned by queries about blocks that are not in the DAG
var ErrUnknownBlock = errors.New("unknown block")

type consensus struct {
	lock            *prioritylock.Mutex
	databaseContext model.DBReader
	genesisHash     *externalapi.DomainHash
	metrics         *metrics.Metrics

	blockProcessor      model.BlockProcessor
	blockValidator      model.BlockValidator
	dagTopologyManager  model.DAGTopologyManager
	dagTraversalManager model.DAGTraversalManager
	reachabilityManager model.ReachabilityManager
	merger              model.Merger
	forkChoiceManager   model.ForkChoiceManager

	blockStore       model.BlockStore
	eventLogStore    model.EventLogStore
	blockStatusStore model.BlockStatusStore
	validatorStore   model.ValidatorStore
	finalityStore    model.FinalityStore
	preStateStore    model.PreStateStore
}

// SubmitBlock validates the given block and, if valid, adds it to the DAG
func (s *consensus) SubmitBlock(block *externalapi.DomainBlock,
	eventLogs []externalapi.EventLog) (*externalapi.BlockInsertionResult, error) {

	s.lock.HighPriorityWriteLock()
	defer s.lock.HighPriorityWriteUnlock()

	return s.submitBlock(block, eventLogs, false)
}

func (s *consensus) submitBlock(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog,
	isolationValidated bool) (*externalapi.BlockInsertionResult, error) {

	start := time.Now()
	result, err := s.blockProcessor.ValidateAndInsertBlock(block, eventLogs, isolationValidated)
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	s.metrics.BlockAccepted(len(result.MergeResult.Rejected), len(result.MergeResult.RejectedDeploys),
		len(result.FinalizedDelta), time.Since(start).Seconds())
	return result, nil
}

func (s *consensus) recordRejection(err error) {
	kind, ok := ruleerrors.KindOf(err)
	if !ok {
		return
	}
	if kind == ruleerrors.EquivocationFault {
		s.metrics.Equivocation()
	}
	s.metrics.BlockRejected(kind.String())
}

// SubmitBlocks validates the given blocks in isolation in parallel and then
// inserts them one by one, in the given order. A block may have a parent
// that appears earlier in the batch.
func (s *consensus) SubmitBlocks(bundles []*externalapi.BlockBundle) []*externalapi.SubmitResult {
	isolationErrs := make([]error, len(bundles))
	group := errgroup.Group{}
	group.SetLimit(runtime.NumCPU())
	for i, bundle := range bundles {
		i, bundle := i, bundle
		group.Go(func() error {
			isolationErrs[i] = s.blockValidator.ValidateBlockInIsolation(bundle.Block, bundle.EventLogs)
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		panic(errors.Wrap(err, "isolation validation workers never fail"))
	}

	s.lock.HighPriorityWriteLock()
	defer s.lock.HighPriorityWriteUnlock()

	results := make([]*externalapi.SubmitResult, len(bundles))
	for i, bundle := range bundles {
		result := &externalapi.SubmitResult{}
		if s.blockValidator.ValidateBlockShape(bundle.Block) == nil {
			result.BlockHash = consensushashing.BlockHash(bundle.Block)
		}

		// A block that failed isolation validation goes through the full
		// validation again so that it gets marked as invalid like any
		// other submitted block
		isolationValidated := isolationErrs[i] == nil
		result.InsertionResult, result.Err = s.submitBlock(bundle.Block, bundle.EventLogs, isolationValidated)
		if result.Err != nil {
			log.Debugf("Block #%d of the batch was not inserted: %s", i, result.Err)
		}
		results[i] = result
	}
	return results
}

func (s *consensus) CurrentTip() (*externalapi.DomainHash, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.forkChoiceManager.CurrentTip(model.NewStagingArea())
}

func (s *consensus) FinalizedFringe() ([]*externalapi.DomainHash, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.finalityStore.FinalizedFringe(model.NewStagingArea()), nil
}

// DAGSlice returns fromHash and its descendants that are at most depth
// heights above it, ordered by height and then by hash
func (s *consensus) DAGSlice(fromHash *externalapi.DomainHash, depth uint64) ([]*externalapi.DomainBlock, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	err := s.requireBlock(stagingArea, fromHash)
	if err != nil {
		return nil, err
	}

	blockHashes, err := s.dagTraversalManager.DAGSlice(stagingArea, fromHash, depth)
	if err != nil {
		return nil, err
	}
	return s.blockStore.Blocks(s.databaseContext, stagingArea, blockHashes)
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.blockStore.Block(s.databaseContext, model.NewStagingArea(), blockHash)
}

func (s *consensus) GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	blockInfo := &externalapi.BlockInfo{}

	exists, err := s.blockStatusStore.Exists(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	blockInfo.Exists = exists
	if !exists {
		return blockInfo, nil
	}

	blockStatus, err := s.blockStatusStore.Get(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	blockInfo.BlockStatus = blockStatus

	// An invalid block is not in the DAG, so it has nothing else to report
	if blockStatus == externalapi.StatusInvalid {
		return blockInfo, nil
	}

	blockInfo.Height, err = s.reachabilityManager.Height(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	blockInfo.PreStateCommitment, err = s.preStateStore.PreState(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	return blockInfo, nil
}

func (s *consensus) GetEventLogs(blockHash *externalapi.DomainHash) ([]externalapi.EventLog, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.eventLogStore.EventLogs(s.databaseContext, model.NewStagingArea(), blockHash)
}

func (s *consensus) GetParents(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	err := s.requireBlock(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.dagTopologyManager.Parents(stagingArea, blockHash)
}

func (s *consensus) GetChildren(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	err := s.requireBlock(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.dagTopologyManager.Children(stagingArea, blockHash)
}

// IsAncestorOf returns whether blockHashA is a strict ancestor of blockHashB
func (s *consensus) IsAncestorOf(blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	for _, blockHash := range []*externalapi.DomainHash{blockHashA, blockHashB} {
		err := s.requireBlock(stagingArea, blockHash)
		if err != nil {
			return false, err
		}
	}
	return s.dagTopologyManager.IsAncestorOf(stagingArea, blockHashA, blockHashB)
}

// JustificationFrontier returns the latest message of each of the given
// validators. Validators that have no block in the DAG are omitted. If no
// validators are given, the latest messages of all validators are returned.
func (s *consensus) JustificationFrontier(
	validators []externalapi.ValidatorID) (map[externalapi.ValidatorID]*externalapi.DomainHash, error) {

	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	if len(validators) == 0 {
		return s.validatorStore.LatestMessages(stagingArea), nil
	}

	frontier := make(map[externalapi.ValidatorID]*externalapi.DomainHash, len(validators))
	for _, validator := range validators {
		latestMessage, ok := s.validatorStore.LatestMessage(stagingArea, validator)
		if ok {
			frontier[validator] = latestMessage
		}
	}
	return frontier, nil
}

func (s *consensus) Tips() ([]*externalapi.DomainHash, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.dagTopologyManager.Tips(model.NewStagingArea()), nil
}

// MergeResultFor recomputes the merge of the parents of the given block
func (s *consensus) MergeResultFor(blockHash *externalapi.DomainHash) (*externalapi.MergeResult, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	if blockHash.Equal(s.genesisHash) {
		return &externalapi.MergeResult{PostStateCommitment: externalapi.NewZeroHash()}, nil
	}

	block, err := s.blockStore.Block(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return s.merger.MergeParents(stagingArea, block.Header)
}

func (s *consensus) MergeParents(header *externalapi.DomainBlockHeader) (*externalapi.MergeResult, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	stagingArea := model.NewStagingArea()
	for _, parent := range header.Parents {
		err := s.requireBlock(stagingArea, parent)
		if err != nil {
			return nil, err
		}
	}
	return s.merger.MergeParents(stagingArea, header)
}

func (s *consensus) Equivocators() ([]externalapi.ValidatorID, error) {
	s.lock.HighPriorityReadLock()
	defer s.lock.HighPriorityReadUnlock()

	return s.validatorStore.Equivocators(model.NewStagingArea()), nil
}

func (s *consensus) requireBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	exists, err := s.blockStore.HasBlock(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Wrapf(ErrUnknownBlock, "block %s", blockHash)
	}
	return nil
}
