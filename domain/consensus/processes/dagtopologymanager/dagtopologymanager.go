package dagtopologymanager

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
)

// dagTopologyManager exposes methods for querying relationships
// between blocks in the DAG
type dagTopologyManager struct {
	reachabilityManager model.ReachabilityManager
	blockRelationStore  model.BlockRelationStore
	tipsStore           model.TipsStore
	databaseContext     model.DBReader
}

// New instantiates a new DAGTopologyManager
func New(
	databaseContext model.DBReader,
	reachabilityManager model.ReachabilityManager,
	blockRelationStore model.BlockRelationStore,
	tipsStore model.TipsStore) model.DAGTopologyManager {

	return &dagTopologyManager{
		databaseContext:     databaseContext,
		reachabilityManager: reachabilityManager,
		blockRelationStore:  blockRelationStore,
		tipsStore:           tipsStore,
	}
}

// Parents returns the DAG parents of the given blockHash, in header order
func (dtm *dagTopologyManager) Parents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Parents, nil
}

// Children returns the DAG children of the given blockHash
func (dtm *dagTopologyManager) Children(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Children, nil
}

// IsParentOf returns true if blockHashA is a direct DAG parent of blockHashB
func (dtm *dagTopologyManager) IsParentOf(stagingArea *model.StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return false, err
	}

	return isHashInSlice(blockHashA, blockRelations.Parents), nil
}

// IsChildOf returns true if blockHashA is a direct DAG child of blockHashB
func (dtm *dagTopologyManager) IsChildOf(stagingArea *model.StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHashB)
	if err != nil {
		return false, err
	}

	return isHashInSlice(blockHashA, blockRelations.Children), nil
}

// IsAncestorOf returns true if blockHashA is a DAG ancestor of blockHashB
func (dtm *dagTopologyManager) IsAncestorOf(stagingArea *model.StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	if blockHashA.Equal(blockHashB) {
		return false, nil
	}
	return dtm.reachabilityManager.IsDAGAncestorOf(stagingArea, blockHashA, blockHashB)
}

// IsAncestorOfOrEqual returns true if blockHashA is in the inclusive past
// of blockHashB
func (dtm *dagTopologyManager) IsAncestorOfOrEqual(stagingArea *model.StagingArea, blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error) {
	return dtm.reachabilityManager.IsDAGAncestorOf(stagingArea, blockHashA, blockHashB)
}

// IsAncestorOfAny returns true if `blockHash` is an ancestor of at least one of `potentialDescendants`
func (dtm *dagTopologyManager) IsAncestorOfAny(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error) {
	for _, potentialDescendant := range potentialDescendants {
		isAncestorOf, err := dtm.IsAncestorOf(stagingArea, blockHash, potentialDescendant)
		if err != nil {
			return false, err
		}

		if isAncestorOf {
			return true, nil
		}
	}

	return false, nil
}

func isHashInSlice(hash *externalapi.DomainHash, hashes []*externalapi.DomainHash) bool {
	for _, h := range hashes {
		if h.Equal(hash) {
			return true
		}
	}
	return false
}

// SetParents stages the relations of a new block: its own parents, the
// child link in each parent and the updated tips
func (dtm *dagTopologyManager) SetParents(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error {
	hasRelations, err := dtm.blockRelationStore.Has(dtm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	children := []*externalapi.DomainHash{}
	if hasRelations {
		blockRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, blockHash)
		if err != nil {
			return err
		}
		children = blockRelations.Children
	}

	for _, parent := range parentHashes {
		parentRelations, err := dtm.blockRelationStore.BlockRelation(dtm.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		if isHashInSlice(blockHash, parentRelations.Children) {
			continue
		}
		parentRelations.Children = append(parentRelations.Children, blockHash)
		hashes.Sort(parentRelations.Children)
		dtm.blockRelationStore.StageBlockRelation(stagingArea, parent, parentRelations)
	}

	dtm.blockRelationStore.StageBlockRelation(stagingArea, blockHash, &model.BlockRelations{
		Parents:  externalapi.CloneHashes(parentHashes),
		Children: children,
	})

	tips := hashset.NewFromSlice(dtm.tipsStore.Tips(stagingArea)...)
	for _, parent := range parentHashes {
		tips.Remove(parent)
	}
	if len(children) == 0 {
		tips.Add(blockHash)
	}
	dtm.tipsStore.StageTips(stagingArea, tips.ToSlice())

	return nil
}

// Tips returns the blocks that have no children, ordered by hash
func (dtm *dagTopologyManager) Tips(stagingArea *model.StagingArea) []*externalapi.DomainHash {
	return dtm.tipsStore.Tips(stagingArea)
}
