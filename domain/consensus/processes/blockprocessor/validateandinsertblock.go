package blockprocessor

import (
	"fmt"

	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/infrastructure/logger"
)

// ValidateAndInsertBlock validates the given block together with the event
// logs of its deploys and, if valid, adds it to the DAG, merges its parents,
// and advances the fork choice and finality. Everything the insertion
// changes is written in a single database transaction.
//
// A block whose sender equivocates is kept in the DAG for evidence: it is
// committed and an EquivocationFault is returned.
func (bp *blockProcessor) ValidateAndInsertBlock(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog,
	isolationValidated bool) (*externalapi.BlockInsertionResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	err := bp.blockValidator.ValidateBlockShape(block)
	if err != nil {
		return nil, err
	}

	stagingArea := model.NewStagingArea()
	blockHash := consensushashing.BlockHash(block)

	err = bp.checkBlockStatus(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	err = bp.validateBlock(stagingArea, blockHash, block, eventLogs, isolationValidated)
	if err != nil {
		return nil, bp.handleValidationError(blockHash, err)
	}

	equivocationErr, err := bp.checkEquivocation(stagingArea, blockHash, block.Header)
	if err != nil {
		return nil, err
	}

	err = bp.indexBlock(stagingArea, blockHash, block, eventLogs)
	if err != nil {
		return nil, err
	}

	mergeResult, err := bp.mergeParents(stagingArea, blockHash, block.Header)
	if err != nil {
		return nil, err
	}

	if !blockHash.Equal(bp.genesisHash) {
		err = bp.blockValidator.ValidateExecution(stagingArea, block, eventLogs, mergeResult.PostStateCommitment)
		if err != nil {
			return nil, bp.handleValidationError(blockHash, err)
		}
	}

	err = bp.updateStatuses(stagingArea, blockHash, equivocationErr != nil, mergeResult)
	if err != nil {
		return nil, err
	}

	if equivocationErr == nil {
		err = bp.updateLatestMessage(stagingArea, blockHash, block.Header)
		if err != nil {
			return nil, err
		}
	}

	finalizedDelta, err := bp.finalityManager.AdvanceFinality(stagingArea, bp.faultTolerance)
	if err != nil {
		return nil, err
	}

	tip, err := bp.forkChoiceManager.CurrentTip(stagingArea)
	if err != nil {
		return nil, err
	}

	err = database.CommitAllChanges(bp.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	blocklogger.LogBlock(block)
	log.Debugf("Block %s validated and inserted", blockHash)
	log.Tracef("%s", logger.NewLogClosure(func() string {
		return fmt.Sprintf("Block count: %d. Deploy count: %d. Tip: %s. Newly finalized: %d",
			bp.blockStore.Count(stagingArea), bp.blockStore.DeployCount(stagingArea), tip, len(finalizedDelta))
	}))

	if equivocationErr != nil {
		return nil, equivocationErr
	}

	return &externalapi.BlockInsertionResult{
		BlockHash:      blockHash,
		MergeResult:    mergeResult,
		Tip:            tip,
		FinalizedDelta: finalizedDelta,
	}, nil
}

// indexBlock stages the block and its event logs and adds it to the
// topology, reachability and height indices
func (bp *blockProcessor) indexBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, eventLogs []externalapi.EventLog) error {

	bp.blockStore.Stage(stagingArea, blockHash, block)
	bp.eventLogStore.Stage(stagingArea, blockHash, eventLogs)

	err := bp.dagTopologyManager.SetParents(stagingArea, blockHash, block.Header.Parents)
	if err != nil {
		return err
	}

	err = bp.reachabilityManager.AddBlock(stagingArea, blockHash)
	if err != nil {
		return err
	}

	return bp.dagTraversalManager.IndexBlockHeight(stagingArea, blockHash)
}

// mergeParents merges the parents of the block and stages the resulting
// pre-state. The genesis is built on the empty state.
func (bp *blockProcessor) mergeParents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) (*externalapi.MergeResult, error) {

	if blockHash.Equal(bp.genesisHash) {
		mergeResult := &externalapi.MergeResult{PostStateCommitment: externalapi.NewZeroHash()}
		bp.preStateStore.Stage(stagingArea, blockHash, mergeResult.PostStateCommitment)
		return mergeResult, nil
	}

	mergeResult, err := bp.merger.MergeParents(stagingArea, header)
	if err != nil {
		return nil, err
	}
	if len(mergeResult.Rejected) > 0 {
		log.Debugf("Merge of the parents of %s rejected %d blocks and %d deploys",
			blockHash, len(mergeResult.Rejected), len(mergeResult.RejectedDeploys))
	}

	bp.preStateStore.Stage(stagingArea, blockHash, mergeResult.PostStateCommitment)
	return mergeResult, nil
}

// updateStatuses stages the status of the new block and the statuses the
// merge assigns to its candidates. A block selected by any merge is Merged
// even if another merge rejected it. Finalized and Equivocating blocks keep
// their status.
func (bp *blockProcessor) updateStatuses(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	isEquivocating bool, mergeResult *externalapi.MergeResult) error {

	switch {
	case blockHash.Equal(bp.genesisHash):
		bp.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusFinalized)
		bp.finalityStore.StageFinalized(stagingArea, []*externalapi.DomainHash{blockHash})
		return nil
	case isEquivocating:
		bp.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusEquivocating)
	default:
		bp.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusIndexed)
	}

	for _, selected := range mergeResult.Selected {
		status, err := bp.blockStatusStore.Get(bp.databaseContext, stagingArea, selected)
		if err != nil {
			return err
		}
		if status == externalapi.StatusIndexed || status == externalapi.StatusMergeRejected {
			bp.blockStatusStore.Stage(stagingArea, selected, externalapi.StatusMerged)
		}
	}

	for _, rejected := range mergeResult.Rejected {
		status, err := bp.blockStatusStore.Get(bp.databaseContext, stagingArea, rejected)
		if err != nil {
			return err
		}
		if status == externalapi.StatusIndexed {
			bp.blockStatusStore.Stage(stagingArea, rejected, externalapi.StatusMergeRejected)
		}
	}
	return nil
}

// updateLatestMessage makes blockHash the latest message of its sender if
// it is ahead of the sender's current one
func (bp *blockProcessor) updateLatestMessage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) error {

	if blockHash.Equal(bp.genesisHash) {
		return nil
	}

	current, ok := bp.validatorStore.LatestMessage(stagingArea, header.Sender)
	if ok {
		currentBlock, err := bp.blockStore.Block(bp.databaseContext, stagingArea, current)
		if err != nil {
			return err
		}
		if currentBlock.Header.SequenceNumber >= header.SequenceNumber {
			return nil
		}
	}

	bp.validatorStore.StageLatestMessage(stagingArea, header.Sender, blockHash)
	return nil
}

// checkEquivocation records the block at its sender's sequence number. If
// the sender already signed a different block at that sequence number both
// blocks are marked Equivocating, both are added to the evidence against
// the sender, and the returned equivocation error describes the evidence.
func (bp *blockProcessor) checkEquivocation(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) (equivocationErr error, err error) {

	if blockHash.Equal(bp.genesisHash) {
		return nil, nil
	}

	existing, exists, err := bp.validatorStore.BlockAtSequence(bp.databaseContext, stagingArea,
		header.Sender, header.SequenceNumber)
	if err != nil {
		return nil, err
	}
	if !exists {
		bp.validatorStore.StageBlockAtSequence(stagingArea, header.Sender, header.SequenceNumber, blockHash)
		return nil, nil
	}

	log.Warnf("Validator %s equivocated at sequence number %d: %s and %s",
		header.Sender, header.SequenceNumber, existing, blockHash)

	bp.validatorStore.StageEquivocation(stagingArea, header.Sender, header.SequenceNumber, existing, blockHash)
	existingStatus, err := bp.blockStatusStore.Get(bp.databaseContext, stagingArea, existing)
	if err != nil {
		return nil, err
	}
	if existingStatus != externalapi.StatusFinalized {
		bp.blockStatusStore.Stage(stagingArea, existing, externalapi.StatusEquivocating)
	}
	return ruleerrors.NewErrEquivocation(header.Sender, header.SequenceNumber, existing, blockHash), nil
}
