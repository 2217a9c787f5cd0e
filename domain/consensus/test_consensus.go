package consensus

import (
	"os"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

const testDatabaseCacheSizeMiB = 8

// NewTestConsensus creates a consensus over a fresh database in a temporary
// directory. teardown closes the database and, unless keepDataDir is set,
// removes the directory.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc externalapi.Consensus, teardown func(keepDataDir bool), err error) {

	dataDir, err := os.MkdirTemp("", testName)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	db, err := ldb.NewLevelDB(dataDir, testDatabaseCacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}

	c, err := f.newConsensus(config, db)
	if err != nil {
		_ = db.Close()
		_ = os.RemoveAll(dataDir)
		return nil, nil, err
	}

	teardown = func(keepDataDir bool) {
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the test database: %s", err)
		}
		if !keepDataDir {
			err = os.RemoveAll(dataDir)
			if err != nil {
				log.Errorf("Error removing the test data directory %s: %s", dataDir, err)
			}
		}
	}
	return c, teardown, nil
}
