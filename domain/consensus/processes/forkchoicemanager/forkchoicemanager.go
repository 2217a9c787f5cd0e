package forkchoicemanager

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

type forkChoiceManager struct {
	databaseContext model.DBReader

	blockStore         model.BlockStore
	validatorStore     model.ValidatorStore
	finalityStore      model.FinalityStore
	dagTopologyManager model.DAGTopologyManager
}

// New instantiates a new ForkChoiceManager
func New(
	databaseContext model.DBReader,
	blockStore model.BlockStore,
	validatorStore model.ValidatorStore,
	finalityStore model.FinalityStore,
	dagTopologyManager model.DAGTopologyManager) model.ForkChoiceManager {

	return &forkChoiceManager{
		databaseContext:    databaseContext,
		blockStore:         blockStore,
		validatorStore:     validatorStore,
		finalityStore:      finalityStore,
		dagTopologyManager: dagTopologyManager,
	}
}

// HonestLatestMessages returns the latest message of every validator that
// was never caught equivocating
func (fcm *forkChoiceManager) HonestLatestMessages(stagingArea *model.StagingArea) map[externalapi.ValidatorID]*externalapi.DomainHash {
	latestMessages := fcm.validatorStore.LatestMessages(stagingArea)
	for validator := range latestMessages {
		if fcm.validatorStore.IsEquivocator(stagingArea, validator) {
			delete(latestMessages, validator)
		}
	}
	return latestMessages
}

// CurrentTip runs ChooseTip over the honest latest messages
func (fcm *forkChoiceManager) CurrentTip(stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	return fcm.ChooseTip(stagingArea, fcm.HonestLatestMessages(stagingArea))
}

// ChooseTip walks down from the last finalized block, each time stepping
// to the child whose future holds the most stake of latestMessages. Stake
// is taken from the bonds of the last finalized block. Ties go to the
// smaller hash. The walk stops at a block none of whose children is
// supported.
func (fcm *forkChoiceManager) ChooseTip(stagingArea *model.StagingArea,
	latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash) (*externalapi.DomainHash, error) {

	current, ok := fcm.finalityStore.LastFinalized(stagingArea)
	if !ok {
		return nil, errors.New("cannot choose a tip before genesis is finalized")
	}

	startBlock, err := fcm.blockStore.Block(fcm.databaseContext, stagingArea, current)
	if err != nil {
		return nil, err
	}
	stakes := externalapi.BondsToMap(startBlock.Header.Bonds)

	for {
		children, err := fcm.dagTopologyManager.Children(stagingArea, current)
		if err != nil {
			return nil, err
		}

		var bestChild *externalapi.DomainHash
		bestSupport := uint64(0)
		for _, child := range children {
			support, err := fcm.support(stagingArea, child, latestMessages, stakes)
			if err != nil {
				return nil, err
			}
			if support == 0 {
				continue
			}
			if support > bestSupport || (support == bestSupport && child.Less(bestChild)) {
				bestChild = child
				bestSupport = support
			}
		}

		if bestChild == nil {
			log.Tracef("Chose tip %s", current)
			return current, nil
		}
		current = bestChild
	}
}

func (fcm *forkChoiceManager) support(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash,
	stakes map[externalapi.ValidatorID]uint64) (uint64, error) {

	support := uint64(0)
	for validator, latestMessage := range latestMessages {
		stake := stakes[validator]
		if stake == 0 {
			continue
		}
		isInFuture, err := fcm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, blockHash, latestMessage)
		if err != nil {
			return 0, err
		}
		if isInFuture {
			support += stake
		}
	}
	return support, nil
}
