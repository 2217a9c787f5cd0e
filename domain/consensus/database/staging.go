package database

import "github.com/kaspanet/mergedag/domain/consensus/model"

// CommitAllChanges commits all changes in stagingArea to the database
// in a single transaction
func CommitAllChanges(databaseContext model.DBManager, stagingArea *model.StagingArea) error {
	dbTx, err := databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = stagingArea.Commit(dbTx)
	if err != nil {
		return err
	}

	return dbTx.Commit()
}
