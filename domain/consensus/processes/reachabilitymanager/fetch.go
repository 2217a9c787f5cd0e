package reachabilitymanager

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func (rt *reachabilityManager) data(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {

	data, err := rt.reachabilityDataStore.ReachabilityData(rt.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch reachability data of %s", blockHash)
	}
	return data, nil
}

func (rt *reachabilityManager) stageData(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, data *model.ReachabilityData) {

	rt.reachabilityDataStore.StageReachabilityData(stagingArea, blockHash, data)
}

// Height returns the DAG height of the given block. Genesis is at height 0.
func (rt *reachabilityManager) Height(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (uint64, error) {
	data, err := rt.data(stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	return data.Height, nil
}

// TreeParent returns the selected parent of the given block, or nil for genesis
func (rt *reachabilityManager) TreeParent(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	data, err := rt.data(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	return data.TreeParent, nil
}
