package reachabilitymanager

import (
	"math/bits"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// IsReachabilityTreeAncestorOf checks if blockHashA is an ancestor of
// blockHashB in the selected-parent tree. A block is its own tree ancestor.
func (rt *reachabilityManager) IsReachabilityTreeAncestorOf(stagingArea *model.StagingArea,
	blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {

	if blockHashA.Equal(blockHashB) {
		return true, nil
	}

	dataA, err := rt.data(stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	dataB, err := rt.data(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	if dataA.Depth >= dataB.Depth {
		return false, nil
	}

	ancestor, err := rt.ancestorAtDepth(stagingArea, blockHashB, dataB, dataA.Depth)
	if err != nil {
		return false, err
	}
	return ancestor.Equal(blockHashA), nil
}

// IsDAGAncestorOf returns true if blockHashA is in the inclusive past of
// blockHashB
func (rt *reachabilityManager) IsDAGAncestorOf(stagingArea *model.StagingArea,
	blockHashA, blockHashB *externalapi.DomainHash) (bool, error) {

	if blockHashA.Equal(blockHashB) {
		return true, nil
	}

	dataA, err := rt.data(stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	dataB, err := rt.data(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}
	if dataA.Height >= dataB.Height {
		return false, nil
	}

	// Check if this node is a reachability tree ancestor of the
	// other node
	isTreeAncestor, err := rt.IsReachabilityTreeAncestorOf(stagingArea, blockHashA, blockHashB)
	if err != nil {
		return false, err
	}
	if isTreeAncestor {
		return true, nil
	}

	// Otherwise, use previously registered future blocks to complete the
	// reachability test
	for _, covering := range dataA.FutureCoveringSet {
		isTreeAncestor, err := rt.IsReachabilityTreeAncestorOf(stagingArea, covering, blockHashB)
		if err != nil {
			return false, err
		}
		if isTreeAncestor {
			return true, nil
		}
	}

	return false, nil
}

// LowestCommonTreeAncestor returns the deepest block that is a tree ancestor
// of both given blocks
func (rt *reachabilityManager) LowestCommonTreeAncestor(stagingArea *model.StagingArea,
	blockHashA, blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	dataA, err := rt.data(stagingArea, blockHashA)
	if err != nil {
		return nil, err
	}
	dataB, err := rt.data(stagingArea, blockHashB)
	if err != nil {
		return nil, err
	}

	if dataA.Depth > dataB.Depth {
		blockHashA, err = rt.ancestorAtDepth(stagingArea, blockHashA, dataA, dataB.Depth)
	} else if dataB.Depth > dataA.Depth {
		blockHashB, err = rt.ancestorAtDepth(stagingArea, blockHashB, dataB, dataA.Depth)
	}
	if err != nil {
		return nil, err
	}

	for !blockHashA.Equal(blockHashB) {
		dataA, err = rt.data(stagingArea, blockHashA)
		if err != nil {
			return nil, err
		}
		dataB, err = rt.data(stagingArea, blockHashB)
		if err != nil {
			return nil, err
		}

		// Both blocks are at the same depth so their skip pointer lists
		// are of equal length. Jump by the largest step that keeps them
		// apart, or to the tree parents if none does.
		next := 0
		for k := len(dataA.SkipPointers) - 1; k > 0; k-- {
			if !dataA.SkipPointers[k].Equal(dataB.SkipPointers[k]) {
				next = k
				break
			}
		}
		if len(dataA.SkipPointers) == 0 {
			return nil, errors.Errorf("blocks %s and %s have no common tree ancestor", blockHashA, blockHashB)
		}
		blockHashA, blockHashB = dataA.SkipPointers[next], dataB.SkipPointers[next]
	}

	return blockHashA, nil
}

// ancestorAtDepth walks the skip pointers of blockHash up to the tree
// ancestor at the given depth
func (rt *reachabilityManager) ancestorAtDepth(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	data *model.ReachabilityData, depth uint64) (*externalapi.DomainHash, error) {

	if depth > data.Depth {
		return nil, errors.Errorf("block %s at depth %d has no ancestor at depth %d", blockHash, data.Depth, depth)
	}

	current := blockHash
	distance := data.Depth - depth
	for distance > 0 {
		k := bits.Len64(distance) - 1
		if k >= len(data.SkipPointers) {
			return nil, errors.Errorf("block %s is missing skip pointer %d", current, k)
		}
		current = data.SkipPointers[k]
		distance -= 1 << k
		if distance == 0 {
			break
		}

		var err error
		data, err = rt.data(stagingArea, current)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}
