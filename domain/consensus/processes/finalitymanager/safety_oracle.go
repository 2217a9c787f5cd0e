package finalitymanager

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type agreeingValidator struct {
	validator     externalapi.ValidatorID
	stake         uint64
	latestMessage *externalapi.DomainBlockHeader
}

// isSafe runs the clique safety oracle on target. Validators agree on
// target when their latest message descends from it. Two agreeing
// validators are connected when neither one's latest message justifies a
// block of the other that conflicts with target. target is safe when the
// heaviest clique holds more than total stake minus the fault tolerance
// threshold.
func (fm *finalityManager) isSafe(stagingArea *model.StagingArea, target *externalapi.DomainHash,
	latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash, faultTolerance float64) (bool, error) {

	targetBlock, err := fm.blockStore.Block(fm.databaseContext, stagingArea, target)
	if err != nil {
		return false, err
	}
	bonds := targetBlock.Header.Bonds
	totalStake := externalapi.TotalStake(bonds)
	threshold := uint64(float64(totalStake) * faultTolerance)
	if threshold > totalStake {
		threshold = totalStake
	}
	requiredStake := totalStake - threshold

	agreeing, err := fm.agreeingValidators(stagingArea, target, bonds, latestMessages)
	if err != nil {
		return false, err
	}

	agreeingStake := uint64(0)
	for _, validator := range agreeing {
		agreeingStake += validator.stake
	}
	if agreeingStake <= requiredStake {
		return false, nil
	}

	adjacency := make([][]bool, len(agreeing))
	for i := range agreeing {
		adjacency[i] = make([]bool, len(agreeing))
	}
	for i := range agreeing {
		for j := i + 1; j < len(agreeing); j++ {
			connected, err := fm.seeNoConflict(stagingArea, target, agreeing[i], agreeing[j])
			if err != nil {
				return false, err
			}
			adjacency[i][j] = connected
			adjacency[j][i] = connected
		}
	}

	cliqueStake := maxWeightClique(agreeing, adjacency)
	log.Tracef("Safety oracle on %s: clique stake %d, required more than %d", target, cliqueStake, requiredStake)
	return cliqueStake > requiredStake, nil
}

func (fm *finalityManager) agreeingValidators(stagingArea *model.StagingArea, target *externalapi.DomainHash,
	bonds []*externalapi.Bond, latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash) ([]*agreeingValidator, error) {

	agreeing := make([]*agreeingValidator, 0, len(bonds))
	for _, bond := range bonds {
		if bond.Stake == 0 {
			continue
		}
		latestMessage, ok := latestMessages[bond.Validator]
		if !ok {
			continue
		}
		agrees, err := fm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, target, latestMessage)
		if err != nil {
			return nil, err
		}
		if !agrees {
			continue
		}
		latestMessageBlock, err := fm.blockStore.Block(fm.databaseContext, stagingArea, latestMessage)
		if err != nil {
			return nil, err
		}
		agreeing = append(agreeing, &agreeingValidator{
			validator:     bond.Validator,
			stake:         bond.Stake,
			latestMessage: latestMessageBlock.Header,
		})
	}

	sort.Slice(agreeing, func(i, j int) bool {
		return agreeing[i].validator.Less(agreeing[j].validator)
	})
	return agreeing, nil
}

func (fm *finalityManager) seeNoConflict(stagingArea *model.StagingArea, target *externalapi.DomainHash,
	a, b *agreeingValidator) (bool, error) {

	conflicts, err := fm.viewConflicts(stagingArea, target, a.latestMessage, b.validator)
	if err != nil || conflicts {
		return false, err
	}
	conflicts, err = fm.viewConflicts(stagingArea, target, b.latestMessage, a.validator)
	if err != nil || conflicts {
		return false, err
	}
	return true, nil
}

// viewConflicts returns whether the block that header justifies for
// validator is neither an ancestor nor a descendant of target. A header
// that justifies nothing for validator holds no conflicting view.
func (fm *finalityManager) viewConflicts(stagingArea *model.StagingArea, target *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader, validator externalapi.ValidatorID) (bool, error) {

	view, ok := header.JustificationOf(validator)
	if !ok {
		return false, nil
	}
	isDescendant, err := fm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, target, view)
	if err != nil {
		return false, err
	}
	if isDescendant {
		return false, nil
	}
	isAncestor, err := fm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, view, target)
	if err != nil {
		return false, err
	}
	return !isAncestor, nil
}

// maxWeightClique returns the stake of the heaviest clique using a branch
// and bound search. Validator sets are small, so the search is exact.
func maxWeightClique(vertices []*agreeingValidator, adjacency [][]bool) uint64 {
	best := uint64(0)
	chosen := make([]int, 0, len(vertices))

	var search func(index int, weight uint64, remaining uint64)
	search = func(index int, weight uint64, remaining uint64) {
		if weight > best {
			best = weight
		}
		if index == len(vertices) || weight+remaining <= best {
			return
		}

		vertex := vertices[index]
		isConnected := true
		for _, member := range chosen {
			if !adjacency[member][index] {
				isConnected = false
				break
			}
		}
		if isConnected {
			chosen = append(chosen, index)
			search(index+1, weight+vertex.stake, remaining-vertex.stake)
			chosen = chosen[:len(chosen)-1]
		}
		search(index+1, weight, remaining-vertex.stake)
	}

	remaining := uint64(0)
	for _, vertex := range vertices {
		remaining += vertex.stake
	}
	search(0, 0, remaining)
	return best
}
