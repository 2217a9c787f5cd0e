package blockprocessor

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// InsertGenesisIfNeeded inserts genesis into an empty DAG. It does nothing
// if genesis is already in the DAG, and fails if the DAG was built on top
// of another genesis.
func (bp *blockProcessor) InsertGenesisIfNeeded(genesis *externalapi.DomainBlock) error {
	genesisHash := consensushashing.BlockHash(genesis)
	if !genesisHash.Equal(bp.genesisHash) {
		return errors.Errorf("genesis %s does not match the configured genesis %s", genesisHash, bp.genesisHash)
	}

	stagingArea := model.NewStagingArea()
	hasGenesis, err := bp.blockStore.HasBlock(bp.databaseContext, stagingArea, genesisHash)
	if err != nil {
		return err
	}
	if hasGenesis {
		return nil
	}
	if bp.blockStore.Count(stagingArea) > 0 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedGenesis, "the database holds %d blocks but not "+
			"genesis %s", bp.blockStore.Count(stagingArea), genesisHash)
	}

	eventLogs := make([]externalapi.EventLog, len(genesis.Deploys))
	_, err = bp.ValidateAndInsertBlock(genesis, eventLogs, false)
	if err != nil {
		return err
	}

	log.Infof("Inserted genesis %s", genesisHash)
	return nil
}
