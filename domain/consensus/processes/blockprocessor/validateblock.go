package blockprocessor

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

func (bp *blockProcessor) checkBlockStatus(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	exists, err := bp.blockStatusStore.Exists(bp.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	status, err := bp.blockStatusStore.Get(bp.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if status == externalapi.StatusInvalid {
		return errors.Wrapf(ruleerrors.ErrKnownInvalid, "block %s is a known invalid block", blockHash)
	}
	return errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", blockHash)
}

func (bp *blockProcessor) validateBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, eventLogs []externalapi.EventLog, isolationValidated bool) error {

	log.Debugf("Validating block %s", blockHash)

	if !isolationValidated {
		err := bp.blockValidator.ValidateBlockInIsolation(block, eventLogs)
		if err != nil {
			return err
		}
	}

	return bp.blockValidator.ValidateBlockInContext(stagingArea, blockHash, block)
}

// handleValidationError remembers blockHash as invalid when err is a rule
// error that no later submission of the same hash could fix, and returns err
func (bp *blockProcessor) handleValidationError(blockHash *externalapi.DomainHash, err error) error {
	if !isPermanentFault(err) {
		return err
	}

	log.Debugf("Block %s is invalid: %s", blockHash, err)

	// Use a fresh staging area so that only the block status is saved
	stagingArea := model.NewStagingArea()
	bp.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusInvalid)
	commitErr := database.CommitAllChanges(bp.databaseContext, stagingArea)
	if commitErr != nil {
		return commitErr
	}
	return err
}

// isPermanentFault returns whether err is a rule error that depends only on
// data covered by the block hash. Missing parents may arrive later, while the
// signature and the supplied event logs are not part of the hash and might
// be fixed by a resubmission.
func isPermanentFault(err error) bool {
	if !ruleerrors.IsRuleError(err) {
		return false
	}
	if errors.As(err, &ruleerrors.ErrMissingParents{}) {
		return false
	}
	return !errors.Is(err, ruleerrors.ErrBadSignature) &&
		!errors.Is(err, ruleerrors.ErrEventLogsMismatch) &&
		!errors.Is(err, ruleerrors.ErrEventLogReplayMismatch)
}
