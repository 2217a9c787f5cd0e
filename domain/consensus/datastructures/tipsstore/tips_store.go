package tipsstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

var tipsKey = database.MakeBucket(nil).Key([]byte("tips"))

type tipsStore struct {
	tips []*externalapi.DomainHash
}

// New instantiates a new TipsStore
func New(dbContext model.DBReader) (model.TipsStore, error) {
	ts := &tipsStore{}

	hasTips, err := dbContext.Has(tipsKey)
	if err != nil {
		return nil, err
	}
	if hasTips {
		tipsBytes, err := dbContext.Get(tipsKey)
		if err != nil {
			return nil, err
		}
		ts.tips, err = serialization.DeserializeHashes(tipsBytes)
		if err != nil {
			return nil, err
		}
	}

	return ts, nil
}

func (ts *tipsStore) StageTips(stagingArea *model.StagingArea, tipHashes []*externalapi.DomainHash) {
	stagingShard := ts.stagingShard(stagingArea)

	stagingShard.newTips = externalapi.CloneHashes(tipHashes)
}

func (ts *tipsStore) Tips(stagingArea *model.StagingArea) []*externalapi.DomainHash {
	stagingShard := ts.stagingShard(stagingArea)

	if stagingShard.newTips != nil {
		return externalapi.CloneHashes(stagingShard.newTips)
	}
	return externalapi.CloneHashes(ts.tips)
}

func (ts *tipsStore) HasTips(stagingArea *model.StagingArea) bool {
	return len(ts.Tips(stagingArea)) > 0
}
