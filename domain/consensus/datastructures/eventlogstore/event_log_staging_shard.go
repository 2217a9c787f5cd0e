package eventlogstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type eventLogStagingShard struct {
	store *eventLogStore
	toAdd map[externalapi.DomainHash][]externalapi.EventLog
}

func (els *eventLogStore) stagingShard(stagingArea *model.StagingArea) *eventLogStagingShard {
	return stagingArea.GetOrCreateShard("EventLogStore", func() model.StagingShard {
		return &eventLogStagingShard{
			store: els,
			toAdd: make(map[externalapi.DomainHash][]externalapi.EventLog),
		}
	}).(*eventLogStagingShard)
}

func (elss *eventLogStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, eventLogs := range elss.toAdd {
		hash := hash
		err := dbTx.Put(elss.store.hashAsKey(&hash), serialization.SerializeEventLogs(eventLogs))
		if err != nil {
			return err
		}
		elss.store.cache.Add(&hash, eventLogs)
	}
	return nil
}
