package dagtraversalmanager

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// dagTraversalManager exposes methods for travering blocks
// in the DAG
type dagTraversalManager struct {
	databaseContext model.DBReader

	dagTopologyManager    model.DAGTopologyManager
	reachabilityManager   model.ReachabilityManager
	reachabilityDataStore model.ReachabilityDataStore

	heightIndex *heightIndex
}

// New instantiates a new DAGTraversalManager. The height index is rebuilt
// from the committed reachability data.
func New(
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	reachabilityManager model.ReachabilityManager,
	reachabilityDataStore model.ReachabilityDataStore) (model.DAGTraversalManager, error) {

	dtm := &dagTraversalManager{
		databaseContext:       databaseContext,
		dagTopologyManager:    dagTopologyManager,
		reachabilityManager:   reachabilityManager,
		reachabilityDataStore: reachabilityDataStore,
		heightIndex:           newHeightIndex(),
	}

	err := reachabilityDataStore.ForEach(databaseContext,
		func(blockHash *externalapi.DomainHash, reachabilityData *model.ReachabilityData) error {
			dtm.heightIndex.insert(heightIndexItem{height: reachabilityData.Height, hash: *blockHash})
			return nil
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to rebuild the height index")
	}
	log.Debugf("Rebuilt the height index with %d blocks", dtm.heightIndex.len())

	return dtm, nil
}

// IndexBlockHeight adds the given block to the height index once
// stagingArea is committed. The block's reachability data must be staged.
func (dtm *dagTraversalManager) IndexBlockHeight(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	height, err := dtm.reachabilityManager.Height(stagingArea, blockHash)
	if err != nil {
		return err
	}

	stagingShard := dtm.heightIndexStagingShard(stagingArea)
	stagingShard.toAdd = append(stagingShard.toAdd, heightIndexItem{height: height, hash: *blockHash})
	return nil
}

// InclusivePastUntil returns blockHash and every block in its past that
// can be reached without passing through a boundary block. Boundary blocks
// are not included. The result is ordered by (height, hash).
func (dtm *dagTraversalManager) InclusivePastUntil(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	isBoundary func(blockHash *externalapi.DomainHash) (bool, error)) ([]*externalapi.DomainHash, error) {

	visited := make(map[externalapi.DomainHash]struct{})
	result := make([]*externalapi.DomainHash, 0)
	queue := []*externalapi.DomainHash{blockHash}

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		if _, ok := visited[*current]; ok {
			continue
		}
		visited[*current] = struct{}{}

		isBoundaryBlock, err := isBoundary(current)
		if err != nil {
			return nil, err
		}
		if isBoundaryBlock {
			continue
		}

		result = append(result, current)
		parents, err := dtm.dagTopologyManager.Parents(stagingArea, current)
		if err != nil {
			return nil, err
		}
		queue = append(queue, parents...)
	}

	err := dtm.SortByHeight(stagingArea, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BranchBlocks returns the inclusive past of tipHash minus the inclusive
// past of baseHash, ordered by hash. A nil baseHash stands for the empty
// set.
func (dtm *dagTraversalManager) BranchBlocks(stagingArea *model.StagingArea,
	baseHash *externalapi.DomainHash, tipHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	branch, err := dtm.InclusivePastUntil(stagingArea, tipHash, func(blockHash *externalapi.DomainHash) (bool, error) {
		if baseHash == nil {
			return false, nil
		}
		return dtm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, blockHash, baseHash)
	})
	if err != nil {
		return nil, err
	}
	hashes.Sort(branch)
	return branch, nil
}

// DAGSlice returns fromHash and its descendants that are at most depth
// levels higher, ordered by (height, hash)
func (dtm *dagTraversalManager) DAGSlice(stagingArea *model.StagingArea,
	fromHash *externalapi.DomainHash, depth uint64) ([]*externalapi.DomainHash, error) {

	fromHeight, err := dtm.reachabilityManager.Height(stagingArea, fromHash)
	if err != nil {
		return nil, err
	}
	maxHeight := fromHeight + depth
	if maxHeight < fromHeight {
		maxHeight = ^uint64(0)
	}

	candidates := make([]*externalapi.DomainHash, 0)
	dtm.heightIndex.rangeHeights(fromHeight, maxHeight, func(item heightIndexItem) bool {
		hash := item.hash
		candidates = append(candidates, &hash)
		return true
	})

	slice := make([]*externalapi.DomainHash, 0, len(candidates))
	for _, candidate := range candidates {
		isInFuture, err := dtm.dagTopologyManager.IsAncestorOfOrEqual(stagingArea, fromHash, candidate)
		if err != nil {
			return nil, err
		}
		if isInFuture {
			slice = append(slice, candidate)
		}
	}
	return slice, nil
}

// SortByHeight sorts blockHashes in place by (height, hash)
func (dtm *dagTraversalManager) SortByHeight(stagingArea *model.StagingArea, blockHashes []*externalapi.DomainHash) error {
	heights := make(map[externalapi.DomainHash]uint64, len(blockHashes))
	for _, blockHash := range blockHashes {
		height, err := dtm.reachabilityManager.Height(stagingArea, blockHash)
		if err != nil {
			return err
		}
		heights[*blockHash] = height
	}

	sort.Slice(blockHashes, func(i, j int) bool {
		heightI, heightJ := heights[*blockHashes[i]], heights[*blockHashes[j]]
		if heightI != heightJ {
			return heightI < heightJ
		}
		return blockHashes[i].Less(blockHashes[j])
	})
	return nil
}
