package conflictdetector

import (
	"sync"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"golang.org/x/sync/errgroup"
)

type blockPair struct {
	a, b externalapi.DomainHash
}

func newBlockPair(a, b *externalapi.DomainHash) blockPair {
	if b.Less(a) {
		a, b = b, a
	}
	return blockPair{a: *a, b: *b}
}

type deployFootprintWithRef struct {
	ref       externalapi.DeployRef
	footprint deployFootprint
}

// BuildConflictSet computes, for every candidate, the blocks it adds on top
// of baseHash, and tests every pair of deploys that lie in the branch of
// one candidate but not in the branch of another. Candidates whose branches
// share a block that has deploys conflict as well.
func (cd *conflictDetector) BuildConflictSet(stagingArea *model.StagingArea, baseHash *externalapi.DomainHash,
	candidates []*externalapi.DomainHash) (*model.ConflictSet, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildConflictSet")
	defer onEnd()

	conflictSet := model.NewConflictSet(baseHash, candidates)
	branchSets := make(map[externalapi.DomainHash]hashset.HashSet, len(candidates))
	for _, candidate := range candidates {
		branch, err := cd.dagTraversalManager.BranchBlocks(stagingArea, baseHash, candidate)
		if err != nil {
			return nil, err
		}
		conflictSet.Branches[*candidate] = branch
		branchSets[*candidate] = hashset.NewFromSlice(branch...)
	}

	// Collect every block pair that has to be tested. A pair shared by
	// several candidate pairs is tested once.
	candidatePairsByBlockPair := make(map[blockPair][][2]*externalapi.DomainHash)
	blockPairs := make([]blockPair, 0)
	blocksToLoad := hashset.New()
	sharedBlocks := make(map[[2]*externalapi.DomainHash][]*externalapi.DomainHash)
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			candidateI, candidateJ := candidates[i], candidates[j]
			onlyISet := branchSets[*candidateI].Subtract(branchSets[*candidateJ])
			onlyI := onlyISet.ToSlice()
			onlyJ := branchSets[*candidateJ].Subtract(branchSets[*candidateI]).ToSlice()

			shared := branchSets[*candidateI].Subtract(onlyISet).ToSlice()
			if len(shared) > 0 {
				sharedBlocks[[2]*externalapi.DomainHash{candidateI, candidateJ}] = shared
				for _, blockHash := range shared {
					blocksToLoad.Add(blockHash)
				}
			}
			for _, blockI := range onlyI {
				for _, blockJ := range onlyJ {
					pair := newBlockPair(blockI, blockJ)
					if _, ok := candidatePairsByBlockPair[pair]; !ok {
						blockPairs = append(blockPairs, pair)
					}
					candidatePairsByBlockPair[pair] = append(candidatePairsByBlockPair[pair],
						[2]*externalapi.DomainHash{candidateI, candidateJ})
					blocksToLoad.Add(blockI)
					blocksToLoad.Add(blockJ)
				}
			}
		}
	}

	// Store access goes through the staging area, which is not safe for
	// concurrent use, so every footprint is loaded before the workers start
	footprints := make(map[externalapi.DomainHash][]*deployFootprintWithRef, blocksToLoad.Length())
	for _, blockHash := range blocksToLoad.ToSlice() {
		blockFootprints, err := cd.blockFootprints(stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		footprints[*blockHash] = blockFootprints
	}

	var mutex sync.Mutex
	conflictingBlockPairs := make(map[blockPair]struct{})
	group := errgroup.Group{}
	group.SetLimit(cd.workers)
	for _, pair := range blockPairs {
		pair := pair
		group.Go(func() error {
			deployConflicts := cd.blockPairConflicts(footprints[pair.a], footprints[pair.b])
			if len(deployConflicts) == 0 {
				return nil
			}

			mutex.Lock()
			defer mutex.Unlock()
			conflictingBlockPairs[pair] = struct{}{}
			conflictSet.DeployConflicts = append(conflictSet.DeployConflicts, deployConflicts...)
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		return nil, err
	}

	// The post-states of two candidates both carry the effects of the
	// blocks their branches share, so two such candidates cannot be merged
	// together unless the shared blocks have no deploys
	for candidatePair, shared := range sharedBlocks {
		for _, blockHash := range shared {
			if len(footprints[*blockHash]) > 0 {
				conflictSet.AddCandidateConflict(candidatePair[0], candidatePair[1])
				break
			}
		}
	}

	for pair := range conflictingBlockPairs {
		for _, candidatePair := range candidatePairsByBlockPair[pair] {
			conflictSet.AddCandidateConflict(candidatePair[0], candidatePair[1])
		}
	}
	conflictSet.SortDeployConflicts()

	log.Debugf("Conflict set over %d candidates on base %s: %d block pairs tested, %d conflicting deploy pairs",
		len(candidates), baseHash, len(blockPairs), len(conflictSet.DeployConflicts))
	return conflictSet, nil
}

func (cd *conflictDetector) blockFootprints(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*deployFootprintWithRef, error) {

	eventLogs, err := cd.eventLogStore.EventLogs(cd.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	blockFootprints := make([]*deployFootprintWithRef, len(eventLogs))
	for i, eventLog := range eventLogs {
		blockFootprints[i] = &deployFootprintWithRef{
			ref:       externalapi.DeployRef{BlockHash: *blockHash, Index: uint32(i)},
			footprint: newDeployFootprint(eventLog),
		}
	}
	return blockFootprints, nil
}

func (cd *conflictDetector) blockPairConflicts(deploysA, deploysB []*deployFootprintWithRef) []model.DeployConflict {
	var deployConflicts []model.DeployConflict
	for _, deployA := range deploysA {
		for _, deployB := range deploysB {
			if cd.footprintsConflict(deployA.footprint, deployB.footprint) {
				deployConflicts = append(deployConflicts, model.NewDeployConflict(deployA.ref, deployB.ref))
			}
		}
	}
	return deployConflicts
}
