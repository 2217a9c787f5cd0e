package reachabilitydatastore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type reachabilityDataStagingShard struct {
	store                 *reachabilityDataStore
	reachabilityDataToAdd map[externalapi.DomainHash]*model.ReachabilityData
}

func (rds *reachabilityDataStore) stagingShard(stagingArea *model.StagingArea) *reachabilityDataStagingShard {
	return stagingArea.GetOrCreateShard("ReachabilityDataStore", func() model.StagingShard {
		return &reachabilityDataStagingShard{
			store:                 rds,
			reachabilityDataToAdd: make(map[externalapi.DomainHash]*model.ReachabilityData),
		}
	}).(*reachabilityDataStagingShard)
}

func (rdss *reachabilityDataStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, reachabilityData := range rdss.reachabilityDataToAdd {
		hash := hash
		err := dbTx.Put(rdss.store.reachabilityDataBlockHashAsKey(&hash),
			serialization.SerializeReachabilityData(reachabilityData))
		if err != nil {
			return err
		}
		rdss.store.reachabilityDataCache.Add(&hash, reachabilityData)
	}

	return nil
}
