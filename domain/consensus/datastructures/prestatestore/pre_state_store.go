package prestatestore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("pre-states"))

// preStateStore keeps, for every merged block, the commitment of the
// combined state its deploys were executed on
type preStateStore struct {
	cache *lrucache.LRUCache
}

// New instantiates a new PreStateStore
func New(cacheSize int) model.PreStateStore {
	return &preStateStore{
		cache: lrucache.New(cacheSize),
	}
}

func (pss *preStateStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, commitment *externalapi.DomainHash) {
	pss.stagingShard(stagingArea).toAdd[*blockHash] = commitment
}

func (pss *preStateStore) PreState(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if commitment, ok := pss.stagingShard(stagingArea).toAdd[*blockHash]; ok {
		return commitment, nil
	}

	if commitment, ok := pss.cache.Get(blockHash); ok {
		return commitment.(*externalapi.DomainHash), nil
	}

	commitmentBytes, err := dbContext.Get(pss.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}
	commitment, err := serialization.DeserializeHash(commitmentBytes)
	if err != nil {
		return nil, err
	}
	pss.cache.Add(blockHash, commitment)
	return commitment, nil
}

func (pss *preStateStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
