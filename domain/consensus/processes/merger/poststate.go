package merger

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// postStateCommitment combines the post-states of the selected candidates.
// selected must be ordered by hash.
func (m *merger) postStateCommitment(stagingArea *model.StagingArea, baseHash *externalapi.DomainHash,
	candidates []*externalapi.DomainHash, selected []*externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if len(candidates) == 1 && len(selected) == 1 {
		return m.blockPostState(stagingArea, selected[0])
	}

	basePostState, err := m.blockPostState(stagingArea, baseHash)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return basePostState, nil
	}

	handle, err := m.stateStore.Snapshot(basePostState)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to snapshot the post-state of base %s", baseHash)
	}
	for _, blockHash := range selected {
		postState, err := m.blockPostState(stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		handle, err = m.stateStore.ApplyDelta(handle, postState)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to apply the post-state of %s", blockHash)
		}
	}
	return handle.Commitment()
}

// blockPostState returns the post-state commitment of the given block. A
// nil block stands for the empty state below genesis.
func (m *merger) blockPostState(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if blockHash == nil {
		return externalapi.NewZeroHash(), nil
	}
	block, err := m.blockStore.Block(m.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return block.Header.PostStateCommitment, nil
}
