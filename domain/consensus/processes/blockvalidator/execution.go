package blockvalidator

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateExecution replays the block's deploys on top of preStateCommitment
// and makes sure the replay reproduces the supplied event logs and the
// post-state commitment in the block's header. Without an executor this is
// a no-op.
func (v *blockValidator) ValidateExecution(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	eventLogs []externalapi.EventLog, preStateCommitment *externalapi.DomainHash) error {

	if v.executor == nil {
		return nil
	}

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateExecution")
	defer onEnd()

	blockHash := consensushashing.BlockHash(block)
	state, err := v.stateStore.Snapshot(preStateCommitment)
	if err != nil {
		return err
	}

	postState := preStateCommitment
	for i, deploy := range block.Deploys {
		eventLog, deployPostState, err := v.executor.ExecuteAndTrace(deploy.Payload, state)
		if err != nil {
			return ruleerrors.NewErrDeployExecution(blockHash, i, consensushashing.DeployID(deploy), err)
		}

		if !eventLog.Equal(eventLogs[i]) {
			return errors.Wrapf(ruleerrors.ErrEventLogReplayMismatch, "replaying deploy #%d of block %s "+
				"produced a different event log", i, blockHash)
		}

		state, err = v.stateStore.Snapshot(deployPostState)
		if err != nil {
			return err
		}
		postState = deployPostState
	}

	if !postState.Equal(block.Header.PostStateCommitment) {
		return errors.Wrapf(ruleerrors.ErrPostStateMismatch, "replaying block %s resulted in post-state %s "+
			"while its header claims %s", blockHash, postState, block.Header.PostStateCommitment)
	}
	return nil
}
