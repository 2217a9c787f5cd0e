package dagtraversalmanager

import (
	"sync"

	"github.com/google/btree"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

const heightIndexDegree = 32

type heightIndexItem struct {
	height uint64
	hash   externalapi.DomainHash
}

func (item heightIndexItem) less(other heightIndexItem) bool {
	if item.height != other.height {
		return item.height < other.height
	}
	return item.hash.Less(&other.hash)
}

// heightIndex orders every committed block by (height, hash). It is kept
// only in memory and rebuilt from the reachability data on startup.
type heightIndex struct {
	mu    sync.RWMutex
	items *btree.BTreeG[heightIndexItem]
}

func newHeightIndex() *heightIndex {
	return &heightIndex{
		items: btree.NewG(heightIndexDegree, heightIndexItem.less),
	}
}

func (hi *heightIndex) insert(items ...heightIndexItem) {
	hi.mu.Lock()
	defer hi.mu.Unlock()

	for _, item := range items {
		hi.items.ReplaceOrInsert(item)
	}
}

// rangeHeights calls f on every item with minHeight <= height <= maxHeight,
// in order, until f returns false
func (hi *heightIndex) rangeHeights(minHeight, maxHeight uint64, f func(item heightIndexItem) bool) {
	hi.mu.RLock()
	defer hi.mu.RUnlock()

	hi.items.AscendGreaterOrEqual(heightIndexItem{height: minHeight}, func(item heightIndexItem) bool {
		if item.height > maxHeight {
			return false
		}
		return f(item)
	})
}

func (hi *heightIndex) len() int {
	hi.mu.RLock()
	defer hi.mu.RUnlock()

	return hi.items.Len()
}

type heightIndexStagingShard struct {
	index *heightIndex
	toAdd []heightIndexItem
}

func (dtm *dagTraversalManager) heightIndexStagingShard(stagingArea *model.StagingArea) *heightIndexStagingShard {
	return stagingArea.GetOrCreateShard("HeightIndex", func() model.StagingShard {
		return &heightIndexStagingShard{index: dtm.heightIndex}
	}).(*heightIndexStagingShard)
}

// Commit only updates memory. The index is derived from the reachability
// data, which is written by its own store in the same transaction.
func (his *heightIndexStagingShard) Commit(_ model.DBTransaction) error {
	his.index.insert(his.toAdd...)
	return nil
}
