package blockvalidator

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/blocksig"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
	"github.com/pkg/errors"
)

// ValidateBlockInIsolation validates a block and its event logs without
// looking at the rest of the DAG
func (v *blockValidator) ValidateBlockInIsolation(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog) error {
	err := v.ValidateBlockShape(block)
	if err != nil {
		return err
	}
	blockHash := consensushashing.BlockHash(block)
	isGenesis := blockHash.Equal(v.genesisHash)

	err = v.checkParentsLimit(blockHash, block.Header, isGenesis)
	if err != nil {
		return err
	}

	if !isGenesis {
		err = v.checkSignature(blockHash, block)
		if err != nil {
			return err
		}
	}

	err = checkNoSelfReference(blockHash, block.Header)
	if err != nil {
		return err
	}

	err = checkNoDuplicateParents(block.Header)
	if err != nil {
		return err
	}

	err = checkBondsOrder(block.Header)
	if err != nil {
		return err
	}

	err = checkJustificationsUnique(block.Header)
	if err != nil {
		return err
	}

	err = v.checkDeploys(block, eventLogs)
	if err != nil {
		return err
	}

	if block.Header.PostStateCommitment == nil {
		return errors.Wrapf(ruleerrors.ErrMissingPostState, "block %s has no post-state commitment", blockHash)
	}
	return nil
}

// ValidateBlockShape makes sure the block has no missing parts, so that it
// can be hashed and stored
func (v *blockValidator) ValidateBlockShape(block *externalapi.DomainBlock) error {
	if block == nil || block.Header == nil {
		return errors.Wrapf(ruleerrors.ErrMalformedBlock, "block has no header")
	}
	for i, parent := range block.Header.Parents {
		if parent == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "parent #%d is missing", i)
		}
	}
	for i, justification := range block.Header.Justifications {
		if justification == nil || justification.Block == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "justification #%d is missing", i)
		}
	}
	for i, bond := range block.Header.Bonds {
		if bond == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "bond #%d is missing", i)
		}
	}
	for i, deploy := range block.Deploys {
		if deploy == nil {
			return errors.Wrapf(ruleerrors.ErrMalformedBlock, "deploy #%d is missing", i)
		}
	}
	return nil
}

func (v *blockValidator) checkParentsLimit(blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader, isGenesis bool) error {

	if len(header.Parents) == 0 && !isGenesis {
		return errors.Wrapf(ruleerrors.ErrNoParents, "block %s has no parents", blockHash)
	}

	if v.maxBlockParents > 0 && len(header.Parents) > v.maxBlockParents {
		return errors.Wrapf(ruleerrors.ErrTooManyParents, "block %s has %d parents, but the maximum allowed "+
			"amount is %d", blockHash, len(header.Parents), v.maxBlockParents)
	}
	return nil
}

func (v *blockValidator) checkSignature(blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {
	if v.skipSignatureChecks {
		return nil
	}
	if !blocksig.Verify(blockHash, block) {
		return errors.Wrapf(ruleerrors.ErrBadSignature, "signature of block %s does not verify "+
			"against sender %s", blockHash, block.Header.Sender)
	}
	return nil
}

func checkNoSelfReference(blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	for _, parent := range header.Parents {
		if parent.Equal(blockHash) {
			return errors.Wrapf(ruleerrors.ErrDAGCycle, "block %s is its own parent", blockHash)
		}
	}
	for _, justification := range header.Justifications {
		if justification.Block.Equal(blockHash) {
			return errors.Wrapf(ruleerrors.ErrDAGCycle, "block %s justifies itself", blockHash)
		}
	}
	return nil
}

func checkNoDuplicateParents(header *externalapi.DomainBlockHeader) error {
	seen := hashset.New()
	for _, parent := range header.Parents {
		if seen.Contains(parent) {
			return errors.Wrapf(ruleerrors.ErrDuplicateParents, "parent %s appears more than once", parent)
		}
		seen.Add(parent)
	}
	return nil
}

func checkBondsOrder(header *externalapi.DomainBlockHeader) error {
	if len(header.Bonds) == 0 {
		return errors.Wrapf(ruleerrors.ErrMalformedBonds, "bonds are empty")
	}
	for i, bond := range header.Bonds {
		if bond.Stake == 0 {
			return errors.Wrapf(ruleerrors.ErrMalformedBonds, "validator %s has zero stake", bond.Validator)
		}
		if i > 0 && !header.Bonds[i-1].Validator.Less(bond.Validator) {
			return errors.Wrapf(ruleerrors.ErrMalformedBonds, "bonds are not strictly ordered at "+
				"index %d", i)
		}
	}
	return nil
}

func checkJustificationsUnique(header *externalapi.DomainBlockHeader) error {
	seen := make(map[externalapi.ValidatorID]struct{}, len(header.Justifications))
	for _, justification := range header.Justifications {
		if justification.Block == nil {
			return errors.Wrapf(ruleerrors.ErrDuplicateJustification, "justification of validator %s "+
				"points nowhere", justification.Validator)
		}
		if _, ok := seen[justification.Validator]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateJustification, "validator %s is justified "+
				"more than once", justification.Validator)
		}
		seen[justification.Validator] = struct{}{}
	}
	return nil
}

func (v *blockValidator) checkDeploys(block *externalapi.DomainBlock, eventLogs []externalapi.EventLog) error {
	if v.maxDeploysPerBlock > 0 && len(block.Deploys) > v.maxDeploysPerBlock {
		return errors.Wrapf(ruleerrors.ErrTooManyDeploys, "block has %d deploys, but the maximum allowed "+
			"amount is %d", len(block.Deploys), v.maxDeploysPerBlock)
	}
	if len(eventLogs) != len(block.Deploys) {
		return errors.Wrapf(ruleerrors.ErrEventLogsMismatch, "block has %d deploys but %d event logs "+
			"were supplied", len(block.Deploys), len(eventLogs))
	}
	for i, eventLog := range eventLogs {
		for j, event := range eventLog {
			err := checkEvent(event)
			if err != nil {
				return errors.Wrapf(ruleerrors.ErrEventLogsMismatch, "event #%d of deploy #%d: %s", j, i, err)
			}
		}
	}
	return nil
}

// checkEvent makes sure event is one of the known kinds with all of its
// hashes present
func checkEvent(event externalapi.Event) error {
	switch event := event.(type) {
	case *externalapi.Produce:
		return checkProduce(event)
	case *externalapi.Consume:
		return checkConsume(event)
	case *externalapi.Comm:
		if event == nil {
			return errors.New("missing comm")
		}
		err := checkConsume(event.Consume)
		if err != nil {
			return err
		}
		for _, produce := range event.Produces {
			err := checkProduce(produce)
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("unknown event %T", event)
	}
}

func checkProduce(produce *externalapi.Produce) error {
	if produce == nil {
		return errors.New("missing produce")
	}
	if produce.Channel == nil || produce.DataHash == nil {
		return errors.New("produce without a channel or data hash")
	}
	return nil
}

func checkConsume(consume *externalapi.Consume) error {
	if consume == nil {
		return errors.New("missing consume")
	}
	if consume.PatternHash == nil {
		return errors.New("consume without a pattern hash")
	}
	for _, channel := range consume.Channels {
		if channel == nil {
			return errors.New("consume on a missing channel")
		}
	}
	return nil
}
