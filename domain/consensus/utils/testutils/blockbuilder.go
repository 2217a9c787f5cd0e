package testutils

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/pkg/errors"
)

// BlockBuilder builds valid, signed blocks on top of a consensus. Deploys are
// executed with the statestore executor on the merge of the block's parents.
type BlockBuilder struct {
	consensus  externalapi.Consensus
	stateStore *statestore.StateStore
	executor   *statestore.Executor
}

// NewBlockBuilder returns a BlockBuilder over consensus. stateStore must be
// the state store consensus merges over.
func NewBlockBuilder(consensus externalapi.Consensus, stateStore *statestore.StateStore) *BlockBuilder {
	return &BlockBuilder{
		consensus:  consensus,
		stateStore: stateStore,
		executor:   statestore.NewExecutor(stateStore),
	}
}

// BuildBlock builds a block of validator with the given parents, the first
// of which is the selected parent. The block justifies the latest message of
// every validator, and carries one deploy per ops list.
func (bb *BlockBuilder) BuildBlock(validator *Validator, parentHashes []*externalapi.DomainHash,
	deploys ...[]statestore.Op) (*externalapi.DomainBlock, []externalapi.EventLog, error) {

	frontier, err := bb.consensus.JustificationFrontier(nil)
	if err != nil {
		return nil, nil, err
	}
	return bb.BuildBlockWithJustifications(validator, parentHashes, frontier, deploys...)
}

// BuildBlockWithJustifications is BuildBlock with explicit justifications.
// The sequence number follows the validator's own justification.
func (bb *BlockBuilder) BuildBlockWithJustifications(validator *Validator, parentHashes []*externalapi.DomainHash,
	justifications map[externalapi.ValidatorID]*externalapi.DomainHash,
	deploys ...[]statestore.Op) (*externalapi.DomainBlock, []externalapi.EventLog, error) {

	if len(parentHashes) == 0 {
		return nil, nil, errors.New("a block needs at least one parent")
	}
	selectedParent, err := bb.consensus.GetBlock(parentHashes[0])
	if err != nil {
		return nil, nil, err
	}

	header := &externalapi.DomainBlockHeader{
		Parents:        externalapi.CloneHashes(parentHashes),
		Justifications: sortedJustifications(justifications),
		Sender:         validator.ID,
		SequenceNumber: 1,
		Bonds:          selectedParent.Clone().Header.Bonds,
	}
	if ownJustification, ok := justifications[validator.ID]; ok {
		ownBlock, err := bb.consensus.GetBlock(ownJustification)
		if err != nil {
			return nil, nil, err
		}
		header.SequenceNumber = ownBlock.Header.SequenceNumber + 1
	}

	mergeResult, err := bb.consensus.MergeParents(header)
	if err != nil {
		return nil, nil, err
	}

	block := &externalapi.DomainBlock{
		Header:  header,
		Deploys: make([]*externalapi.DomainDeploy, len(deploys)),
	}
	eventLogs := make([]externalapi.EventLog, len(deploys))
	postState := mergeResult.PostStateCommitment
	for i, ops := range deploys {
		deploy := &externalapi.DomainDeploy{
			Sender:  append([]byte{}, validator.ID[:]...),
			Payload: statestore.EncodePayload(ops...),
		}
		block.Deploys[i] = deploy

		handle, err := bb.stateStore.Snapshot(postState)
		if err != nil {
			return nil, nil, err
		}
		eventLogs[i], postState, err = bb.executor.ExecuteAndTrace(deploy.Payload, handle)
		if err != nil {
			return nil, nil, err
		}
	}
	header.PostStateCommitment = postState

	err = validator.Sign(block)
	if err != nil {
		return nil, nil, err
	}
	return block, eventLogs, nil
}

func sortedJustifications(
	justifications map[externalapi.ValidatorID]*externalapi.DomainHash) []*externalapi.Justification {

	sorted := make([]*externalapi.Justification, 0, len(justifications))
	for validator, blockHash := range justifications {
		sorted = append(sorted, &externalapi.Justification{Validator: validator, Block: blockHash})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Validator.Less(sorted[j].Validator)
	})
	return sorted
}
