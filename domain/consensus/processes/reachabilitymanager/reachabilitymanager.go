package reachabilitymanager

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/infrastructure/logger"
)

// reachabilityManager maintains a structure that allows to answer
// reachability queries in sub-linear time
type reachabilityManager struct {
	databaseContext       model.DBReader
	blockRelationStore    model.BlockRelationStore
	reachabilityDataStore model.ReachabilityDataStore
}

// New instantiates a new reachabilityManager
func New(
	databaseContext model.DBReader,
	blockRelationStore model.BlockRelationStore,
	reachabilityDataStore model.ReachabilityDataStore,
) model.ReachabilityManager {
	return &reachabilityManager{
		databaseContext:       databaseContext,
		blockRelationStore:    blockRelationStore,
		reachabilityDataStore: reachabilityDataStore,
	}
}

// AddBlock adds the block with the given blockHash into the reachability
// index. The block's relations must already be staged.
func (rt *reachabilityManager) AddBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "reachabilityManager.AddBlock")
	defer onEnd()

	blockRelations, err := rt.blockRelationStore.BlockRelation(rt.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	// If this is the genesis node, simply initialize it and return
	if len(blockRelations.Parents) == 0 {
		rt.stageData(stagingArea, blockHash, &model.ReachabilityData{})
		return nil
	}

	selectedParent := blockRelations.Parents[0]
	newData, err := rt.newTreeNodeData(stagingArea, selectedParent, blockRelations.Parents)
	if err != nil {
		return err
	}
	rt.stageData(stagingArea, blockHash, newData)

	mergeSet, err := rt.mergeSet(stagingArea, selectedParent, blockRelations.Parents)
	if err != nil {
		return err
	}

	// Add the block to the futureCoveringSets of all the blocks
	// in the merge set
	for _, current := range mergeSet {
		err = rt.insertToFutureCoveringSet(stagingArea, current, blockHash)
		if err != nil {
			return err
		}
	}

	log.Tracef("Added block %s to the reachability index with %d merge set blocks", blockHash, len(mergeSet))
	return nil
}

func (rt *reachabilityManager) newTreeNodeData(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash,
	parents []*externalapi.DomainHash) (*model.ReachabilityData, error) {

	selectedParentData, err := rt.data(stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	maxParentHeight := uint64(0)
	for _, parent := range parents {
		parentData, err := rt.data(stagingArea, parent)
		if err != nil {
			return nil, err
		}
		if parentData.Height > maxParentHeight {
			maxParentHeight = parentData.Height
		}
	}

	skipPointers, err := rt.buildSkipPointers(stagingArea, selectedParent)
	if err != nil {
		return nil, err
	}

	return &model.ReachabilityData{
		TreeParent:   selectedParent,
		Depth:        selectedParentData.Depth + 1,
		Height:       maxParentHeight + 1,
		SkipPointers: skipPointers,
	}, nil
}

// buildSkipPointers returns the skip pointers of a new child of treeParent.
// Entry k is the 2^k-th tree ancestor of the child.
func (rt *reachabilityManager) buildSkipPointers(stagingArea *model.StagingArea,
	treeParent *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	skipPointers := []*externalapi.DomainHash{treeParent}
	for k := 1; ; k++ {
		previous := skipPointers[k-1]
		previousData, err := rt.data(stagingArea, previous)
		if err != nil {
			return nil, err
		}
		if len(previousData.SkipPointers) < k {
			break
		}
		skipPointers = append(skipPointers, previousData.SkipPointers[k-1])
	}
	return skipPointers, nil
}

// mergeSet returns the blocks in the past of the new block that are not in
// the inclusive past of its selected parent
func (rt *reachabilityManager) mergeSet(stagingArea *model.StagingArea, selectedParent *externalapi.DomainHash,
	parents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	visited := make(map[externalapi.DomainHash]struct{})
	mergeSet := make([]*externalapi.DomainHash, 0)
	queue := make([]*externalapi.DomainHash, 0, len(parents)-1)
	queue = append(queue, parents[1:]...)

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		if _, ok := visited[*current]; ok {
			continue
		}
		visited[*current] = struct{}{}

		isInSelectedParentPast, err := rt.IsDAGAncestorOf(stagingArea, current, selectedParent)
		if err != nil {
			return nil, err
		}
		if isInSelectedParentPast {
			continue
		}

		mergeSet = append(mergeSet, current)
		currentRelations, err := rt.blockRelationStore.BlockRelation(rt.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		queue = append(queue, currentRelations.Parents...)
	}

	return mergeSet, nil
}

// insertToFutureCoveringSet registers blockHash in the future covering set
// of node, unless a block already there is a tree ancestor of blockHash
func (rt *reachabilityManager) insertToFutureCoveringSet(stagingArea *model.StagingArea,
	node, blockHash *externalapi.DomainHash) error {

	nodeData, err := rt.data(stagingArea, node)
	if err != nil {
		return err
	}

	for _, covering := range nodeData.FutureCoveringSet {
		isCovered, err := rt.IsReachabilityTreeAncestorOf(stagingArea, covering, blockHash)
		if err != nil {
			return err
		}
		if isCovered {
			return nil
		}
	}

	nodeData.FutureCoveringSet = append(nodeData.FutureCoveringSet, blockHash)
	rt.stageData(stagingArea, node, nodeData)
	return nil
}
