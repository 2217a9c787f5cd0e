package tipsstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type tipsStagingShard struct {
	store   *tipsStore
	newTips []*externalapi.DomainHash
}

func (ts *tipsStore) stagingShard(stagingArea *model.StagingArea) *tipsStagingShard {
	return stagingArea.GetOrCreateShard("TipsStore", func() model.StagingShard {
		return &tipsStagingShard{
			store:   ts,
			newTips: nil,
		}
	}).(*tipsStagingShard)
}

func (tss *tipsStagingShard) Commit(dbTx model.DBTransaction) error {
	if tss.newTips == nil {
		return nil
	}

	err := dbTx.Put(tipsKey, serialization.SerializeHashes(tss.newTips))
	if err != nil {
		return err
	}
	tss.store.tips = tss.newTips

	return nil
}
