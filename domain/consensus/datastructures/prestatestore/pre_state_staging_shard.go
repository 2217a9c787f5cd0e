package prestatestore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type preStateStagingShard struct {
	store *preStateStore
	toAdd map[externalapi.DomainHash]*externalapi.DomainHash
}

func (pss *preStateStore) stagingShard(stagingArea *model.StagingArea) *preStateStagingShard {
	return stagingArea.GetOrCreateShard("PreStateStore", func() model.StagingShard {
		return &preStateStagingShard{
			store: pss,
			toAdd: make(map[externalapi.DomainHash]*externalapi.DomainHash),
		}
	}).(*preStateStagingShard)
}

func (psss *preStateStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, commitment := range psss.toAdd {
		hash := hash
		err := dbTx.Put(psss.store.hashAsKey(&hash), serialization.SerializeHash(commitment))
		if err != nil {
			return err
		}
		psss.store.cache.Add(&hash, commitment)
	}
	return nil
}
