package blockstatusstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type blockStatusStagingShard struct {
	store *blockStatusStore
	toAdd map[externalapi.DomainHash]externalapi.BlockStatus
}

func (bss *blockStatusStore) stagingShard(stagingArea *model.StagingArea) *blockStatusStagingShard {
	return stagingArea.GetOrCreateShard("BlockStatusStore", func() model.StagingShard {
		return &blockStatusStagingShard{
			store: bss,
			toAdd: make(map[externalapi.DomainHash]externalapi.BlockStatus),
		}
	}).(*blockStatusStagingShard)
}

func (bsss *blockStatusStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, status := range bsss.toAdd {
		hash := hash
		err := dbTx.Put(bsss.store.hashAsKey(&hash), serialization.SerializeBlockStatus(status))
		if err != nil {
			return err
		}
		bsss.store.cache.Add(&hash, status)
	}

	return nil
}
