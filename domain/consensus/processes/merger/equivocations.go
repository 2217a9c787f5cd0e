package merger

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
)

// equivocationEvidence is the equivocation evidence visible from a set of
// parents: the blocks and validators it proves equivocating
type equivocationEvidence struct {
	blocks     hashset.HashSet
	validators map[externalapi.ValidatorID]struct{}
}

// equivocationsInPast collects the equivocations both of whose blocks are
// in the inclusive past of parents. The past of a block never changes, so
// the result is the same on every node regardless of the order in which
// the node received the equivocating blocks.
func (m *merger) equivocationsInPast(stagingArea *model.StagingArea,
	parents []*externalapi.DomainHash) (*equivocationEvidence, error) {

	evidence := &equivocationEvidence{
		blocks:     hashset.New(),
		validators: make(map[externalapi.ValidatorID]struct{}),
	}

	for _, validator := range m.validatorStore.Equivocators(stagingArea) {
		for _, equivocation := range m.validatorStore.Equivocations(stagingArea, validator) {
			inPast := make([]*externalapi.DomainHash, 0, len(equivocation.Blocks))
			for _, blockHash := range equivocation.Blocks {
				isInPast, err := m.isInPastOf(stagingArea, blockHash, parents)
				if err != nil {
					return nil, err
				}
				if isInPast {
					inPast = append(inPast, blockHash)
				}
			}
			if len(inPast) < 2 {
				continue
			}

			evidence.validators[validator] = struct{}{}
			for _, blockHash := range inPast {
				evidence.blocks.Add(blockHash)
			}
		}
	}
	return evidence, nil
}

func (m *merger) isInPastOf(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	parents []*externalapi.DomainHash) (bool, error) {

	for _, parent := range parents {
		isAncestor, err := m.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, blockHash, parent)
		if err != nil {
			return false, err
		}
		if isAncestor {
			return true, nil
		}
	}
	return false, nil
}
