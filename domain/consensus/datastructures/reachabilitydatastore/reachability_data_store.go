package reachabilitydatastore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/lrucache"
)

var reachabilityDataBucket = database.MakeBucket([]byte("reachability"))

// reachabilityDataStore represents a store of ReachabilityData
type reachabilityDataStore struct {
	reachabilityDataCache *lrucache.LRUCache
}

// New instantiates a new ReachabilityDataStore
func New(cacheSize int) model.ReachabilityDataStore {
	return &reachabilityDataStore{
		reachabilityDataCache: lrucache.New(cacheSize),
	}
}

// StageReachabilityData stages the given reachabilityData for the given blockHash
func (rds *reachabilityDataStore) StageReachabilityData(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, reachabilityData *model.ReachabilityData) {

	stagingShard := rds.stagingShard(stagingArea)

	stagingShard.reachabilityDataToAdd[*blockHash] = reachabilityData.Clone()
}

// ReachabilityData returns the reachabilityData associated with the given blockHash
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {

	stagingShard := rds.stagingShard(stagingArea)

	if reachabilityData, ok := stagingShard.reachabilityDataToAdd[*blockHash]; ok {
		return reachabilityData.Clone(), nil
	}

	if reachabilityData, ok := rds.reachabilityDataCache.Get(blockHash); ok {
		return reachabilityData.(*model.ReachabilityData).Clone(), nil
	}

	reachabilityDataBytes, err := dbContext.Get(rds.reachabilityDataBlockHashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	reachabilityData, err := serialization.DeserializeReachabilityData(reachabilityDataBytes)
	if err != nil {
		return nil, err
	}
	rds.reachabilityDataCache.Add(blockHash, reachabilityData)
	return reachabilityData.Clone(), nil
}

func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := rds.stagingShard(stagingArea)

	if _, ok := stagingShard.reachabilityDataToAdd[*blockHash]; ok {
		return true, nil
	}

	if rds.reachabilityDataCache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(rds.reachabilityDataBlockHashAsKey(blockHash))
}

// ForEach calls f for every committed entry. It does not see staged data.
func (rds *reachabilityDataStore) ForEach(dbContext model.DBReader,
	f func(blockHash *externalapi.DomainHash, reachabilityData *model.ReachabilityData) error) error {

	cursor, err := dbContext.Cursor(reachabilityDataBucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}
		blockHash, err := externalapi.NewDomainHashFromByteSlice(key.Suffix())
		if err != nil {
			return err
		}
		reachabilityDataBytes, err := cursor.Value()
		if err != nil {
			return err
		}
		reachabilityData, err := serialization.DeserializeReachabilityData(reachabilityDataBytes)
		if err != nil {
			return err
		}
		err = f(blockHash, reachabilityData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (rds *reachabilityDataStore) reachabilityDataBlockHashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return reachabilityDataBucket.Key(hash.ByteSlice())
}
