package validatorstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

type sequenceKey struct {
	validator      externalapi.ValidatorID
	sequenceNumber uint64
}

type validatorStagingShard struct {
	store              *validatorStore
	sequencesToAdd     map[sequenceKey]*externalapi.DomainHash
	latestToAdd        map[externalapi.ValidatorID]*externalapi.DomainHash
	equivocationsToAdd map[externalapi.ValidatorID][]*model.Equivocation
}

func (vs *validatorStore) stagingShard(stagingArea *model.StagingArea) *validatorStagingShard {
	return stagingArea.GetOrCreateShard("ValidatorStore", func() model.StagingShard {
		return &validatorStagingShard{
			store:              vs,
			sequencesToAdd:     make(map[sequenceKey]*externalapi.DomainHash),
			latestToAdd:        make(map[externalapi.ValidatorID]*externalapi.DomainHash),
			equivocationsToAdd: make(map[externalapi.ValidatorID][]*model.Equivocation),
		}
	}).(*validatorStagingShard)
}

func (vss *validatorStagingShard) Commit(dbTx model.DBTransaction) error {
	for key, blockHash := range vss.sequencesToAdd {
		err := dbTx.Put(sequenceDBKey(key.validator, key.sequenceNumber), blockHash.ByteSlice())
		if err != nil {
			return err
		}
	}

	for validator, blockHash := range vss.latestToAdd {
		err := dbTx.Put(latestMessageBucket.Key(validator[:]), blockHash.ByteSlice())
		if err != nil {
			return err
		}
		vss.store.latestMessages[validator] = blockHash
	}

	for validator, equivocations := range vss.equivocationsToAdd {
		err := dbTx.Put(equivocationsBucket.Key(validator[:]), serialization.SerializeEquivocations(equivocations))
		if err != nil {
			return err
		}
		vss.store.equivocations[validator] = equivocations
	}

	return nil
}
