package finalitystore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type finalityStagingShard struct {
	store    *finalityStore
	toAppend []*externalapi.DomainHash
	staged   map[externalapi.DomainHash]struct{}
}

func (fs *finalityStore) stagingShard(stagingArea *model.StagingArea) *finalityStagingShard {
	return stagingArea.GetOrCreateShard("FinalityStore", func() model.StagingShard {
		return &finalityStagingShard{
			store:  fs,
			staged: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*finalityStagingShard)
}

func (fss *finalityStagingShard) Commit(dbTx model.DBTransaction) error {
	for i, blockHash := range fss.toAppend {
		index := uint64(len(fss.store.fringe) + i)
		err := dbTx.Put(bucket.Key(serialization.Uint64Key(index)), serialization.SerializeHash(blockHash))
		if err != nil {
			return err
		}
	}

	for _, blockHash := range fss.toAppend {
		fss.store.fringe = append(fss.store.fringe, blockHash)
		fss.store.finalized[*blockHash] = struct{}{}
	}
	return nil
}
