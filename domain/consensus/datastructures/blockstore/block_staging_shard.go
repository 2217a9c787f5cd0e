package blockstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type blockStagingShard struct {
	store *blockStore
	toAdd map[externalapi.DomainHash]*externalapi.DomainBlock
}

func (bs *blockStore) stagingShard(stagingArea *model.StagingArea) *blockStagingShard {
	return stagingArea.GetOrCreateShard("BlockStore", func() model.StagingShard {
		return &blockStagingShard{
			store: bs,
			toAdd: make(map[externalapi.DomainHash]*externalapi.DomainBlock),
		}
	}).(*blockStagingShard)
}

func (bss *blockStagingShard) Commit(dbTx model.DBTransaction) error {
	if len(bss.toAdd) == 0 {
		return nil
	}

	for hash, block := range bss.toAdd {
		hash := hash
		err := dbTx.Put(blockKey(&hash), serialization.SerializeBlock(block))
		if err != nil {
			return err
		}
		bss.store.cache.Add(&hash, block)
	}

	counts := bss.store.counts.with(bss.toAdd)
	err := dbTx.Put(countsKey, serialization.SerializeBlockCounts(counts.blocks, counts.deploys))
	if err != nil {
		return err
	}
	bss.store.counts = counts
	return nil
}
