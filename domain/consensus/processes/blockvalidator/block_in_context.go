package blockvalidator

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBlockInContext validates the block against the blocks it
// references. It expects the block to have passed ValidateBlockInIsolation.
func (v *blockValidator) ValidateBlockInContext(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInContext")
	defer onEnd()

	if blockHash.Equal(v.genesisHash) {
		return nil
	}

	err := v.checkReferencesExist(stagingArea, block.Header)
	if err != nil {
		return err
	}

	err = v.checkParentsIncest(stagingArea, block.Header)
	if err != nil {
		return err
	}

	err = v.checkJustificationSenders(stagingArea, block.Header)
	if err != nil {
		return err
	}

	err = v.checkSequenceNumber(stagingArea, blockHash, block.Header)
	if err != nil {
		return err
	}

	return v.checkBondsMatchSelectedParent(stagingArea, blockHash, block.Header)
}

func referencedHashes(header *externalapi.DomainBlockHeader) []*externalapi.DomainHash {
	references := make([]*externalapi.DomainHash, 0, len(header.Parents)+len(header.Justifications))
	references = append(references, header.Parents...)
	for _, justification := range header.Justifications {
		references = append(references, justification.Block)
	}
	return references
}

// checkReferencesExist makes sure every parent and justification is a known
// valid block. Unknown references are reported together so the caller can
// request all of them.
func (v *blockValidator) checkReferencesExist(stagingArea *model.StagingArea,
	header *externalapi.DomainBlockHeader) error {

	var missing []*externalapi.DomainHash
	seen := make(map[externalapi.DomainHash]struct{})
	for _, reference := range referencedHashes(header) {
		if _, ok := seen[*reference]; ok {
			continue
		}
		seen[*reference] = struct{}{}

		exists, err := v.blockStore.HasBlock(v.databaseContext, stagingArea, reference)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hasStatus, err := v.blockStatusStore.Exists(v.databaseContext, stagingArea, reference)
		if err != nil {
			return err
		}
		if hasStatus {
			status, err := v.blockStatusStore.Get(v.databaseContext, stagingArea, reference)
			if err != nil {
				return err
			}
			if status == externalapi.StatusInvalid {
				return errors.Wrapf(ruleerrors.ErrInvalidAncestor, "referenced block %s is invalid", reference)
			}
		}
		missing = append(missing, reference)
	}

	if len(missing) > 0 {
		return ruleerrors.NewErrMissingParents(missing)
	}
	return nil
}

// checkParentsIncest makes sure no parent is an ancestor of another parent
func (v *blockValidator) checkParentsIncest(stagingArea *model.StagingArea,
	header *externalapi.DomainBlockHeader) error {

	for i, parentA := range header.Parents {
		for _, parentB := range header.Parents[i+1:] {
			isAncestorOf, err := v.dagTopologyManager.IsAncestorOf(stagingArea, parentA, parentB)
			if err != nil {
				return err
			}
			if isAncestorOf {
				return errors.Wrapf(ruleerrors.ErrInvalidParentsRelation, "parent %s is an "+
					"ancestor of another parent %s", parentA, parentB)
			}

			isAncestorOf, err = v.dagTopologyManager.IsAncestorOf(stagingArea, parentB, parentA)
			if err != nil {
				return err
			}
			if isAncestorOf {
				return errors.Wrapf(ruleerrors.ErrInvalidParentsRelation, "parent %s is an "+
					"ancestor of another parent %s", parentB, parentA)
			}
		}
	}
	return nil
}

func (v *blockValidator) checkJustificationSenders(stagingArea *model.StagingArea,
	header *externalapi.DomainBlockHeader) error {

	for _, justification := range header.Justifications {
		justified, err := v.blockStore.Block(v.databaseContext, stagingArea, justification.Block)
		if err != nil {
			return err
		}
		if justified.Header.Sender != justification.Validator {
			return errors.Wrapf(ruleerrors.ErrJustificationSenderMismatch, "justification of "+
				"validator %s points at block %s which was sent by %s",
				justification.Validator, justification.Block, justified.Header.Sender)
		}
	}
	return nil
}

// checkSequenceNumber makes sure the block follows the sender's own
// justified block, or starts the sender's sequence at 1
func (v *blockValidator) checkSequenceNumber(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {

	expected := uint64(1)
	ownJustification, ok := header.JustificationOf(header.Sender)
	if ok {
		previous, err := v.blockStore.Block(v.databaseContext, stagingArea, ownJustification)
		if err != nil {
			return err
		}
		expected = previous.Header.SequenceNumber + 1
	}

	if header.SequenceNumber != expected {
		return errors.Wrapf(ruleerrors.ErrUnexpectedSequenceNumber, "block %s has sequence number %d "+
			"while %d was expected", blockHash, header.SequenceNumber, expected)
	}
	return nil
}

func (v *blockValidator) checkBondsMatchSelectedParent(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {

	selectedParent, err := v.blockStore.Block(v.databaseContext, stagingArea, header.SelectedParent())
	if err != nil {
		return err
	}

	if !bondsEqual(header.Bonds, selectedParent.Header.Bonds) {
		return errors.Wrapf(ruleerrors.ErrUnexpectedBonds, "bonds of block %s differ from the bonds "+
			"of its selected parent %s", blockHash, header.SelectedParent())
	}
	return nil
}

func bondsEqual(a, b []*externalapi.Bond) bool {
	if len(a) != len(b) {
		return false
	}
	for i, bond := range a {
		if *bond != *b[i] {
			return false
		}
	}
	return true
}
