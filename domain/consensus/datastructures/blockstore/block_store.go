package blockstore

import (
	"github.com/kaspanet/mergedag/domain/consensus/database"
	"github.com/kaspanet/mergedag/domain/consensus/database/serialization"
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/lrucache"
)

var blocksBucket = database.MakeBucket([]byte("blocks"))
var countsKey = database.MakeBucket(nil).Key([]byte("block-counts"))

// blockCounts is the number of stored blocks and of the deploys they carry
type blockCounts struct {
	blocks  uint64
	deploys uint64
}

func (bc blockCounts) with(blocks map[externalapi.DomainHash]*externalapi.DomainBlock) blockCounts {
	for _, block := range blocks {
		bc.blocks++
		bc.deploys += uint64(len(block.Deploys))
	}
	return bc
}

// blockStore keeps blocks by hash. Recently read blocks are cached
// deserialized, and the counts are kept in memory and persisted on every
// commit.
type blockStore struct {
	cache  *lrucache.LRUCache
	counts blockCounts
}

// New instantiates a new BlockStore
func New(dbContext model.DBReader, cacheSize int) (model.BlockStore, error) {
	bs := &blockStore{
		cache: lrucache.New(cacheSize),
	}

	hasCounts, err := dbContext.Has(countsKey)
	if err != nil {
		return nil, err
	}
	if hasCounts {
		countsBytes, err := dbContext.Get(countsKey)
		if err != nil {
			return nil, err
		}
		bs.counts.blocks, bs.counts.deploys, err = serialization.DeserializeBlockCounts(countsBytes)
		if err != nil {
			return nil, err
		}
	}

	return bs, nil
}

func blockKey(blockHash *externalapi.DomainHash) model.DBKey {
	return blocksBucket.Key(blockHash.ByteSlice())
}

// Stage stages block under blockHash. A block staged twice in the same
// staging area is counted once.
func (bs *blockStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) {
	bs.stagingShard(stagingArea).toAdd[*blockHash] = block.Clone()
}

func (bs *blockStore) IsStaged(stagingArea *model.StagingArea) bool {
	return len(bs.stagingShard(stagingArea).toAdd) != 0
}

// Block returns a clone of the block stored under blockHash
func (bs *blockStore) Block(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {

	block, err := bs.lookup(dbContext, bs.stagingShard(stagingArea), blockHash)
	if err != nil {
		return nil, err
	}
	return block.Clone(), nil
}

// Blocks is Block for every hash of blockHashes
func (bs *blockStore) Blocks(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHashes []*externalapi.DomainHash) ([]*externalapi.DomainBlock, error) {

	stagingShard := bs.stagingShard(stagingArea)
	blocks := make([]*externalapi.DomainBlock, 0, len(blockHashes))
	for _, blockHash := range blockHashes {
		block, err := bs.lookup(dbContext, stagingShard, blockHash)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block.Clone())
	}
	return blocks, nil
}

// lookup returns the stored block itself. Callers must clone it before
// handing it out.
func (bs *blockStore) lookup(dbContext model.DBReader, stagingShard *blockStagingShard,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {

	if block, ok := stagingShard.toAdd[*blockHash]; ok {
		return block, nil
	}
	if cached, ok := bs.cache.Get(blockHash); ok {
		return cached.(*externalapi.DomainBlock), nil
	}

	blockBytes, err := dbContext.Get(blockKey(blockHash))
	if err != nil {
		return nil, err
	}
	block, err := serialization.DeserializeBlock(blockBytes)
	if err != nil {
		return nil, err
	}
	bs.cache.Add(blockHash, block)
	return block, nil
}

func (bs *blockStore) HasBlock(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	if _, ok := bs.stagingShard(stagingArea).toAdd[*blockHash]; ok {
		return true, nil
	}
	if bs.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(blockKey(blockHash))
}

// Count returns the number of blocks in the store, staged blocks included
func (bs *blockStore) Count(stagingArea *model.StagingArea) uint64 {
	return bs.counts.with(bs.stagingShard(stagingArea).toAdd).blocks
}

// DeployCount returns the number of deploys carried by the blocks in the
// store, staged blocks included
func (bs *blockStore) DeployCount(stagingArea *model.StagingArea) uint64 {
	return bs.counts.with(bs.stagingShard(stagingArea).toAdd).deploys
}
