package blockrelationstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("block-relations"))

// blockRelationStore represents a store of BlockRelations
type blockRelationStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new BlockRelationStore
func New(cacheSize int) model.BlockRelationStore {
	return &blockRelationStore{
		cache: lrucache.New(cacheSize),
	}
}

func (brs *blockRelationStore) StageBlockRelation(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, blockRelations *model.BlockRelations) {
	stagingShard := brs.stagingShard(stagingArea)

	stagingShard.toAdd[*blockHash] = blockRelations.Clone()
}

func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {
	stagingShard := brs.stagingShard(stagingArea)

	if blockRelations, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockRelations.Clone(), nil
	}

	if blockRelations, ok := brs.cache.Get(blockHash); ok {
		return blockRelations.(*model.BlockRelations).Clone(), nil
	}

	blockRelationsBytes, err := dbContext.Get(brs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockRelations, err := serialization.DeserializeBlockRelations(blockRelationsBytes)
	if err != nil {
		return nil, err
	}
	brs.cache.Add(blockHash, blockRelations)
	return blockRelations.Clone(), nil
}

func (brs *blockRelationStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	stagingShard := brs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if brs.cache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(brs.hashAsKey(blockHash))
}

func (brs *blockRelationStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
