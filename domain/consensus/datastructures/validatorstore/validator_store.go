package validatorstore

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

var sequencesBucket = database.MakeBucket([]byte("validator-sequences"))
var latestMessageBucket = database.MakeBucket([]byte("validator-latest"))
var equivocationsBucket = database.MakeBucket([]byte("validator-equivocations"))

// validatorStore keeps the latest message and equivocation tables in
// memory. The first is bounded by the number of validators ever seen, the
// second by the number of equivocating blocks. The (validator, sequence
// number) table grows with the DAG and is read from the database.
type validatorStore struct {
	latestMessages map[externalapi.ValidatorID]*externalapi.DomainHash
	equivocations  map[externalapi.ValidatorID][]*model.Equivocation
}

// New instantiates a new ValidatorStore, loading the latest message and
// equivocation tables from dbContext
func New(dbContext model.DBReader) (model.ValidatorStore, error) {
	vs := &validatorStore{
		latestMessages: make(map[externalapi.ValidatorID]*externalapi.DomainHash),
		equivocations:  make(map[externalapi.ValidatorID][]*model.Equivocation),
	}

	err := forEachValidatorEntry(dbContext, latestMessageBucket, func(validator externalapi.ValidatorID, value []byte) error {
		blockHash, err := serialization.DeserializeHash(value)
		if err != nil {
			return err
		}
		vs.latestMessages[validator] = blockHash
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachValidatorEntry(dbContext, equivocationsBucket, func(validator externalapi.ValidatorID, value []byte) error {
		equivocations, err := serialization.DeserializeEquivocations(value)
		if err != nil {
			return err
		}
		vs.equivocations[validator] = equivocations
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vs, nil
}

func forEachValidatorEntry(dbContext model.DBReader, bucket model.DBBucket,
	f func(validator externalapi.ValidatorID, value []byte) error) error {

	cursor, err := dbContext.Cursor(bucket)
	if err != nil {
		return err
	}
	defer cursor.Close()

	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return err
		}
		validator, err := externalapi.NewValidatorIDFromByteSlice(key.Suffix())
		if err != nil {
			return err
		}
		value, err := cursor.Value()
		if err != nil {
			return err
		}
		err = f(validator, value)
		if err != nil {
			return err
		}
	}
	return nil
}

func sequenceDBKey(validator externalapi.ValidatorID, sequenceNumber uint64) model.DBKey {
	return sequencesBucket.Bucket(validator[:]).Key(serialization.Uint64Key(sequenceNumber))
}

func (vs *validatorStore) StageBlockAtSequence(stagingArea *model.StagingArea, validator externalapi.ValidatorID,
	sequenceNumber uint64, blockHash *externalapi.DomainHash) {

	key := sequenceKey{validator: validator, sequenceNumber: sequenceNumber}
	vs.stagingShard(stagingArea).sequencesToAdd[key] = blockHash
}

// BlockAtSequence returns the first block seen from validator with the
// given sequence number
func (vs *validatorStore) BlockAtSequence(dbContext model.DBReader, stagingArea *model.StagingArea,
	validator externalapi.ValidatorID, sequenceNumber uint64) (*externalapi.DomainHash, bool, error) {

	key := sequenceKey{validator: validator, sequenceNumber: sequenceNumber}
	if blockHash, ok := vs.stagingShard(stagingArea).sequencesToAdd[key]; ok {
		return blockHash, true, nil
	}

	dbKey := sequenceDBKey(validator, sequenceNumber)
	has, err := dbContext.Has(dbKey)
	if err != nil {
		return nil, false, err
	}
	if !has {
		return nil, false, nil
	}
	blockHashBytes, err := dbContext.Get(dbKey)
	if err != nil {
		return nil, false, err
	}
	blockHash, err := serialization.DeserializeHash(blockHashBytes)
	if err != nil {
		return nil, false, err
	}
	return blockHash, true, nil
}

func (vs *validatorStore) StageLatestMessage(stagingArea *model.StagingArea, validator externalapi.ValidatorID,
	blockHash *externalapi.DomainHash) {

	vs.stagingShard(stagingArea).latestToAdd[validator] = blockHash
}

func (vs *validatorStore) LatestMessage(stagingArea *model.StagingArea,
	validator externalapi.ValidatorID) (*externalapi.DomainHash, bool) {

	if blockHash, ok := vs.stagingShard(stagingArea).latestToAdd[validator]; ok {
		return blockHash, true
	}
	blockHash, ok := vs.latestMessages[validator]
	return blockHash, ok
}

// LatestMessages returns a copy of the latest message table, staged
// entries included
func (vs *validatorStore) LatestMessages(stagingArea *model.StagingArea) map[externalapi.ValidatorID]*externalapi.DomainHash {
	stagingShard := vs.stagingShard(stagingArea)

	latestMessages := make(map[externalapi.ValidatorID]*externalapi.DomainHash,
		len(vs.latestMessages)+len(stagingShard.latestToAdd))
	for validator, blockHash := range vs.latestMessages {
		latestMessages[validator] = blockHash
	}
	for validator, blockHash := range stagingShard.latestToAdd {
		latestMessages[validator] = blockHash
	}
	return latestMessages
}

// StageEquivocation adds blockHashes to the evidence that validator signed
// several blocks with sequenceNumber
func (vs *validatorStore) StageEquivocation(stagingArea *model.StagingArea, validator externalapi.ValidatorID,
	sequenceNumber uint64, blockHashes ...*externalapi.DomainHash) {

	stagingShard := vs.stagingShard(stagingArea)
	staged, ok := stagingShard.equivocationsToAdd[validator]
	if !ok {
		staged = cloneEquivocations(vs.equivocations[validator])
	}
	stagingShard.equivocationsToAdd[validator] = addToEquivocations(staged, sequenceNumber, blockHashes)
}

// Equivocations returns the evidence against validator ordered by sequence
// number, staged evidence included
func (vs *validatorStore) Equivocations(stagingArea *model.StagingArea,
	validator externalapi.ValidatorID) []*model.Equivocation {

	if staged, ok := vs.stagingShard(stagingArea).equivocationsToAdd[validator]; ok {
		return cloneEquivocations(staged)
	}
	return cloneEquivocations(vs.equivocations[validator])
}

func (vs *validatorStore) IsEquivocator(stagingArea *model.StagingArea, validator externalapi.ValidatorID) bool {
	if _, ok := vs.stagingShard(stagingArea).equivocationsToAdd[validator]; ok {
		return true
	}
	_, ok := vs.equivocations[validator]
	return ok
}

// Equivocators returns every validator caught equivocating, ordered by id
func (vs *validatorStore) Equivocators(stagingArea *model.StagingArea) []externalapi.ValidatorID {
	stagingShard := vs.stagingShard(stagingArea)

	equivocators := make([]externalapi.ValidatorID, 0, len(vs.equivocations)+len(stagingShard.equivocationsToAdd))
	for validator := range vs.equivocations {
		equivocators = append(equivocators, validator)
	}
	for validator := range stagingShard.equivocationsToAdd {
		if _, ok := vs.equivocations[validator]; !ok {
			equivocators = append(equivocators, validator)
		}
	}
	sort.Slice(equivocators, func(i, j int) bool {
		return equivocators[i].Less(equivocators[j])
	})
	return equivocators
}

func cloneEquivocations(equivocations []*model.Equivocation) []*model.Equivocation {
	clone := make([]*model.Equivocation, len(equivocations))
	for i, equivocation := range equivocations {
		clone[i] = equivocation.Clone()
	}
	return clone
}

// addToEquivocations adds the blocks missing from the evidence at
// sequenceNumber, keeping equivocations ordered by sequence number
func addToEquivocations(equivocations []*model.Equivocation, sequenceNumber uint64,
	blockHashes []*externalapi.DomainHash) []*model.Equivocation {

	i := sort.Search(len(equivocations), func(i int) bool {
		return equivocations[i].SequenceNumber >= sequenceNumber
	})
	if i == len(equivocations) || equivocations[i].SequenceNumber != sequenceNumber {
		equivocations = append(equivocations, nil)
		copy(equivocations[i+1:], equivocations[i:])
		equivocations[i] = &model.Equivocation{SequenceNumber: sequenceNumber}
	}

	equivocation := equivocations[i]
	for _, blockHash := range blockHashes {
		if !containsHash(equivocation.Blocks, blockHash) {
			equivocation.Blocks = append(equivocation.Blocks, blockHash)
		}
	}
	return equivocations
}

func containsHash(blockHashes []*externalapi.DomainHash, blockHash *externalapi.DomainHash) bool {
	for _, candidate := range blockHashes {
		if candidate.Equal(blockHash) {
			return true
		}
	}
	return false
}
