package eventlogstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("event-logs"))

// eventLogStore keeps the event logs of every indexed block's deploys.
// Once handed over, the logs are owned by the store.
type eventLogStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new EventLogStore
func New(cacheSize int) model.EventLogStore {
	return &eventLogStore{
		cache: lrucache.New(cacheSize),
	}
}

// Stage stages the event logs of the block with the given hash
func (els *eventLogStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, eventLogs []externalapi.EventLog) {
	stagingShard := els.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = externalapi.CloneEventLogs(eventLogs)
}

// EventLogs returns the event logs of the deploys of the block with the given hash
func (els *eventLogStore) EventLogs(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]externalapi.EventLog, error) {

	stagingShard := els.stagingShard(stagingArea)
	if eventLogs, ok := stagingShard.toAdd[*blockHash]; ok {
		return externalapi.CloneEventLogs(eventLogs), nil
	}

	if eventLogs, ok := els.cache.Get(blockHash); ok {
		return externalapi.CloneEventLogs(eventLogs.([]externalapi.EventLog)), nil
	}

	eventLogsBytes, err := dbContext.Get(els.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}
	eventLogs, err := serialization.DeserializeEventLogs(eventLogsBytes)
	if err != nil {
		return nil, err
	}
	els.cache.Add(blockHash, eventLogs)
	return externalapi.CloneEventLogs(eventLogs), nil
}

func (els *eventLogStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
