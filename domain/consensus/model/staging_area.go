package model

import "github.com/pkg/errors"

// StagingShard is the part of a StagingArea owned by a single store
type StagingShard interface {
	Commit(dbTx DBTransaction) error
}

// StagingArea holds every change made while processing a single block.
// The changes of all shards are written in one database transaction, so
// a block is either fully added or not added at all.
type StagingArea struct {
	shards      map[string]StagingShard
	shardOrder  []string
	isCommitted bool
}

// NewStagingArea creates a new, empty staging area.
func NewStagingArea() *StagingArea {
	return &StagingArea{
		shards: make(map[string]StagingShard),
	}
}

// GetOrCreateShard attempts to retrieve a shard with the given name.
// If it does not exist - a new shard is created using `createFunc`.
func (sa *StagingArea) GetOrCreateShard(shardName string, createFunc func() StagingShard) StagingShard {
	if _, ok := sa.shards[shardName]; !ok {
		sa.shards[shardName] = createFunc()
		sa.shardOrder = append(sa.shardOrder, shardName)
	}
	return sa.shards[shardName]
}

// Commit writes all shards into dbTx. Shards are committed in the
// order they were created.
func (sa *StagingArea) Commit(dbTx DBTransaction) error {
	if sa.isCommitted {
		return errors.New("Attempt to call Commit on already committed stagingArea")
	}

	for _, shardName := range sa.shardOrder {
		err := sa.shards[shardName].Commit(dbTx)
		if err != nil {
			return err
		}
	}

	sa.isCommitted = true
	return nil
}
