package finalitymanager

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

type finalityManager struct {
	databaseContext model.DBReader

	blockStore          model.BlockStore
	blockStatusStore    model.BlockStatusStore
	finalityStore       model.FinalityStore
	reachabilityManager model.ReachabilityManager
	dagTopologyManager  model.DAGTopologyManager
	dagTraversalManager model.DAGTraversalManager
	forkChoiceManager   model.ForkChoiceManager
}

// New instantiates a new FinalityManager
func New(databaseContext model.DBReader,
	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	finalityStore model.FinalityStore,
	reachabilityManager model.ReachabilityManager,
	dagTopologyManager model.DAGTopologyManager,
	dagTraversalManager model.DAGTraversalManager,
	forkChoiceManager model.ForkChoiceManager) model.FinalityManager {

	return &finalityManager{
		databaseContext:     databaseContext,
		blockStore:          blockStore,
		blockStatusStore:    blockStatusStore,
		finalityStore:       finalityStore,
		reachabilityManager: reachabilityManager,
		dagTopologyManager:  dagTopologyManager,
		dagTraversalManager: dagTraversalManager,
		forkChoiceManager:   forkChoiceManager,
	}
}

// AdvanceFinality tries to finalize the blocks of the fork-choice chain
// above the last finalized block, lowest first, and stops at the first one
// that the safety oracle does not accept. It returns the blocks it
// finalized, ordered by height and then by hash.
func (fm *finalityManager) AdvanceFinality(stagingArea *model.StagingArea, faultTolerance float64) ([]*externalapi.DomainHash, error) {
	log.Debugf("AdvanceFinality start")
	defer log.Debugf("AdvanceFinality end")

	if faultTolerance < 0 || faultTolerance > 1 {
		return nil, errors.Errorf("fault tolerance %f is out of the range [0, 1]", faultTolerance)
	}

	lastFinalized, ok := fm.finalityStore.LastFinalized(stagingArea)
	if !ok {
		return nil, errors.New("cannot advance finality before genesis is finalized")
	}

	tip, err := fm.forkChoiceManager.CurrentTip(stagingArea)
	if err != nil {
		return nil, err
	}
	targets, err := fm.chainAbove(stagingArea, lastFinalized, tip)
	if err != nil {
		return nil, err
	}
	latestMessages := fm.forkChoiceManager.HonestLatestMessages(stagingArea)

	delta := make([]*externalapi.DomainHash, 0)
	for _, target := range targets {
		isFinal, err := fm.isSafe(stagingArea, target, latestMessages, faultTolerance)
		if err != nil {
			return nil, err
		}
		if !isFinal {
			break
		}

		newlyFinalized, err := fm.finalize(stagingArea, target)
		if err != nil {
			return nil, err
		}
		delta = append(delta, newlyFinalized...)
	}

	if len(delta) > 0 {
		log.Debugf("Finalized %d blocks, the last finalized block is now %s", len(delta), delta[len(delta)-1])
	}
	return delta, nil
}

// chainAbove returns the tree ancestors of tip (inclusive) that are strict
// descendants of lastFinalized, lowest first
func (fm *finalityManager) chainAbove(stagingArea *model.StagingArea,
	lastFinalized, tip *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	chain := make([]*externalapi.DomainHash, 0)
	for current := tip; current != nil; {
		isAbove, err := fm.dagTopologyManager.IsAncestorOf(stagingArea, lastFinalized, current)
		if err != nil {
			return nil, err
		}
		if !isAbove {
			break
		}
		chain = append(chain, current)

		current, err = fm.reachabilityManager.TreeParent(stagingArea, current)
		if err != nil {
			return nil, err
		}
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// finalize stages target and every not yet finalized block in its past.
// Equivocating blocks of that past enter the log too but keep their status.
func (fm *finalityManager) finalize(stagingArea *model.StagingArea,
	target *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	newlyFinalized, err := fm.dagTraversalManager.InclusivePastUntil(stagingArea, target,
		func(blockHash *externalapi.DomainHash) (bool, error) {
			return fm.finalityStore.IsFinalized(stagingArea, blockHash), nil
		})
	if err != nil {
		return nil, err
	}

	for _, blockHash := range newlyFinalized {
		status, err := fm.blockStatusStore.Get(fm.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		if status != externalapi.StatusEquivocating {
			fm.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusFinalized)
		}
	}

	// target is the highest block in its own inclusive past, so it ends
	// up last in the log
	fm.finalityStore.StageFinalized(stagingArea, newlyFinalized)
	return newlyFinalized, nil
}
