package finalitystore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("finality-log"))

// finalityStore is an append-only log of finalized blocks, keyed by the
// position of each block in the log. The log is loaded into memory on
// startup.
type finalityStore struct {
	fringe    []*externalapi.DomainHash
	finalized map[externalapi.DomainHash]struct{}
}

// New instantiates a new FinalityStore
func New(dbContext model.DBReader) (model.FinalityStore, error) {
	fs := &finalityStore{
		finalized: make(map[externalapi.DomainHash]struct{}),
	}

	cursor, err := dbContext.Cursor(bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		index, err := serialization.DeserializeUint64Key(key.Suffix())
		if err != nil {
			return nil, err
		}
		if index != uint64(len(fs.fringe)) {
			return nil, errors.Errorf("finalized fringe log has a gap at index %d", len(fs.fringe))
		}
		blockHashBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		blockHash, err := serialization.DeserializeHash(blockHashBytes)
		if err != nil {
			return nil, err
		}
		fs.fringe = append(fs.fringe, blockHash)
		fs.finalized[*blockHash] = struct{}{}
	}

	return fs, nil
}

// StageFinalized appends blockHashes to the log. Blocks that are already
// finalized are skipped.
func (fs *finalityStore) StageFinalized(stagingArea *model.StagingArea, blockHashes []*externalapi.DomainHash) {
	stagingShard := fs.stagingShard(stagingArea)

	for _, blockHash := range blockHashes {
		if fs.isFinalized(stagingShard, blockHash) {
			continue
		}
		stagingShard.toAppend = append(stagingShard.toAppend, blockHash)
		stagingShard.staged[*blockHash] = struct{}{}
	}
}

func (fs *finalityStore) IsFinalized(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) bool {
	return fs.isFinalized(fs.stagingShard(stagingArea), blockHash)
}

func (fs *finalityStore) isFinalized(stagingShard *finalityStagingShard, blockHash *externalapi.DomainHash) bool {
	if _, ok := stagingShard.staged[*blockHash]; ok {
		return true
	}
	_, ok := fs.finalized[*blockHash]
	return ok
}

// FinalizedFringe returns the log in finalization order, equivocating
// blocks settled by a finalization included
func (fs *finalityStore) FinalizedFringe(stagingArea *model.StagingArea) []*externalapi.DomainHash {
	stagingShard := fs.stagingShard(stagingArea)

	fringe := make([]*externalapi.DomainHash, 0, len(fs.fringe)+len(stagingShard.toAppend))
	fringe = append(fringe, fs.fringe...)
	fringe = append(fringe, stagingShard.toAppend...)
	return fringe
}

func (fs *finalityStore) LastFinalized(stagingArea *model.StagingArea) (*externalapi.DomainHash, bool) {
	stagingShard := fs.stagingShard(stagingArea)

	if len(stagingShard.toAppend) > 0 {
		return stagingShard.toAppend[len(stagingShard.toAppend)-1], true
	}
	if len(fs.fringe) > 0 {
		return fs.fringe[len(fs.fringe)-1], true
	}
	return nil, false
}
