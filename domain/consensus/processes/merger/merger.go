package merger

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/pkg/errors"
)

// merger picks, among the parents of a block, a maximum weight set of
// mutually non-conflicting candidates and combines their post-states
type merger struct {
	databaseContext model.DBReader

	blockStore          model.BlockStore
	validatorStore      model.ValidatorStore
	reachabilityManager model.ReachabilityManager
	dagTopologyManager  model.DAGTopologyManager
	conflictDetector    model.ConflictDetector
	stateStore          externalapi.StateStore

	maxExactMergeCandidates int
}

// New instantiates a new Merger
func New(
	databaseContext model.DBReader,
	blockStore model.BlockStore,
	validatorStore model.ValidatorStore,
	reachabilityManager model.ReachabilityManager,
	dagTopologyManager model.DAGTopologyManager,
	conflictDetector model.ConflictDetector,
	stateStore externalapi.StateStore,
	maxExactMergeCandidates int) model.Merger {

	return &merger{
		databaseContext:         databaseContext,
		blockStore:              blockStore,
		validatorStore:          validatorStore,
		reachabilityManager:     reachabilityManager,
		dagTopologyManager:      dagTopologyManager,
		conflictDetector:        conflictDetector,
		stateStore:              stateStore,
		maxExactMergeCandidates: maxExactMergeCandidates,
	}
}

// MergeParents merges the parents of the block with the given header. The
// candidates are weighted by the stake of the validators the header
// justifies. Candidates proven equivocating within the past of the parents
// are rejected up front, and equivocators proven there carry no weight.
func (m *merger) MergeParents(stagingArea *model.StagingArea,
	header *externalapi.DomainBlockHeader) (*externalapi.MergeResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "MergeParents")
	defer onEnd()

	candidates := header.Parents
	if len(candidates) == 0 {
		return nil, errors.New("cannot merge the parents of a parentless block")
	}

	err := m.checkCandidatesRelation(stagingArea, candidates)
	if err != nil {
		return nil, err
	}

	baseHash, err := m.mergeBase(stagingArea, candidates)
	if err != nil {
		return nil, err
	}

	evidence, err := m.equivocationsInPast(stagingArea, candidates)
	if err != nil {
		return nil, err
	}

	eligible := make([]*externalapi.DomainHash, 0, len(candidates))
	for _, candidate := range candidates {
		if evidence.blocks.Contains(candidate) {
			log.Debugf("Candidate %s is equivocating and is excluded from the merge", candidate)
			continue
		}
		eligible = append(eligible, candidate)
	}

	weights, err := m.candidateWeights(stagingArea, header, eligible, evidence.validators)
	if err != nil {
		return nil, err
	}

	conflictSet, err := m.conflictDetector.BuildConflictSet(stagingArea, baseHash, candidates)
	if err != nil {
		return nil, err
	}

	return m.Merge(stagingArea, baseHash, eligible, weights, conflictSet)
}

func (m *merger) checkCandidatesRelation(stagingArea *model.StagingArea, candidates []*externalapi.DomainHash) error {
	for i, candidateA := range candidates {
		for _, candidateB := range candidates[i+1:] {
			isAncestor, err := m.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, candidateA, candidateB)
			if err != nil {
				return err
			}
			isDescendant, err := m.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, candidateB, candidateA)
			if err != nil {
				return err
			}
			if isAncestor || isDescendant {
				return errors.Wrapf(ruleerrors.ErrInvalidParentsRelation,
					"parents %s and %s are ancestor and descendant", candidateA, candidateB)
			}
		}
	}
	return nil
}

// mergeBase returns the lowest common tree ancestor of the candidates. The
// base of a single candidate is its tree parent, which is nil for genesis.
func (m *merger) mergeBase(stagingArea *model.StagingArea,
	candidates []*externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if len(candidates) == 1 {
		return m.reachabilityManager.TreeParent(stagingArea, candidates[0])
	}

	base := candidates[0]
	for _, candidate := range candidates[1:] {
		var err error
		base, err = m.reachabilityManager.LowestCommonTreeAncestor(stagingArea, base, candidate)
		if err != nil {
			return nil, err
		}
	}
	return base, nil
}

// candidateWeights returns, per candidate, the stake of the bonded
// validators outside equivocators whose justification in header descends
// from the candidate
func (m *merger) candidateWeights(stagingArea *model.StagingArea, header *externalapi.DomainBlockHeader,
	candidates []*externalapi.DomainHash,
	equivocators map[externalapi.ValidatorID]struct{}) (map[externalapi.DomainHash]uint64, error) {

	weights := make(map[externalapi.DomainHash]uint64, len(candidates))
	for _, candidate := range candidates {
		weights[*candidate] = 0
	}

	for _, bond := range header.Bonds {
		if _, ok := equivocators[bond.Validator]; ok {
			continue
		}
		justification, ok := header.JustificationOf(bond.Validator)
		if !ok {
			continue
		}
		for _, candidate := range candidates {
			supports, err := m.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, candidate, justification)
			if err != nil {
				return nil, err
			}
			if supports {
				weights[*candidate] += bond.Stake
			}
		}
	}
	return weights, nil
}
