package merger

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
)

// Merge selects a maximum weight subset of candidates in which no two
// candidates conflict according to conflictSet, and computes the combined
// post-state of the selection on top of baseHash. Every candidate of
// conflictSet that is not selected is rejected, together with the deploys
// of its branch that no selected branch carries.
func (m *merger) Merge(stagingArea *model.StagingArea, baseHash *externalapi.DomainHash,
	candidates []*externalapi.DomainHash, weights map[externalapi.DomainHash]uint64,
	conflictSet *model.ConflictSet) (*externalapi.MergeResult, error) {

	sortedCandidates := hashes.SortedCopy(candidates)
	var selected []*externalapi.DomainHash
	if len(sortedCandidates) <= m.maxExactMergeCandidates {
		selected = selectExact(sortedCandidates, weights, conflictSet)
	} else {
		log.Debugf("Merging %d candidates greedily", len(sortedCandidates))
		selected = selectGreedy(sortedCandidates, weights, conflictSet)
	}

	rejected := hashset.NewFromSlice(conflictSet.Candidates...).Subtract(hashset.NewFromSlice(selected...)).ToSlice()

	rejectedDeploys, err := m.rejectedDeploys(stagingArea, selected, rejected, conflictSet)
	if err != nil {
		return nil, err
	}

	postStateCommitment, err := m.postStateCommitment(stagingArea, baseHash, sortedCandidates, selected)
	if err != nil {
		return nil, err
	}

	log.Debugf("Merged %d candidates on base %s: %d selected, %d rejected, %d rejected deploys",
		len(conflictSet.Candidates), baseHash, len(selected), len(rejected), len(rejectedDeploys))

	return &externalapi.MergeResult{
		Base:                baseHash,
		Selected:            selected,
		Rejected:            rejected,
		RejectedDeploys:     rejectedDeploys,
		PostStateCommitment: postStateCommitment,
	}, nil
}

func (m *merger) rejectedDeploys(stagingArea *model.StagingArea, selected, rejected []*externalapi.DomainHash,
	conflictSet *model.ConflictSet) ([]*externalapi.DomainHash, error) {

	keptBlocks := hashset.New()
	for _, candidate := range selected {
		for _, blockHash := range conflictSet.Branches[*candidate] {
			keptBlocks.Add(blockHash)
		}
	}

	rejectedBlocks := hashset.New()
	for _, candidate := range rejected {
		for _, blockHash := range conflictSet.Branches[*candidate] {
			if !keptBlocks.Contains(blockHash) {
				rejectedBlocks.Add(blockHash)
			}
		}
	}

	rejectedDeploys := make([]*externalapi.DomainHash, 0)
	for _, blockHash := range rejectedBlocks.ToSlice() {
		block, err := m.blockStore.Block(m.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		for _, deploy := range block.Deploys {
			rejectedDeploys = append(rejectedDeploys, consensushashing.DeployID(deploy))
		}
	}
	return rejectedDeploys, nil
}

type selection struct {
	members []*externalapi.DomainHash
	weight  uint64
}

// isBetterThan orders selections by weight, and then by their members
// compared element by element. When one member list is a prefix of the
// other the longer one wins.
func (s *selection) isBetterThan(other *selection) bool {
	if s.weight != other.weight {
		return s.weight > other.weight
	}
	for i := 0; i < len(s.members) && i < len(other.members); i++ {
		if !s.members[i].Equal(other.members[i]) {
			return s.members[i].Less(other.members[i])
		}
	}
	return len(s.members) > len(other.members)
}

func conflictsWithAny(candidate *externalapi.DomainHash, chosen []*externalapi.DomainHash,
	conflictSet *model.ConflictSet) bool {

	for _, member := range chosen {
		if conflictSet.CandidatesConflict(candidate, member) {
			return true
		}
	}
	return false
}

// selectExact runs a branch and bound search over all independent sets.
// sortedCandidates must be ordered by hash.
func selectExact(sortedCandidates []*externalapi.DomainHash, weights map[externalapi.DomainHash]uint64,
	conflictSet *model.ConflictSet) []*externalapi.DomainHash {

	remainingWeight := uint64(0)
	for _, candidate := range sortedCandidates {
		remainingWeight += weights[*candidate]
	}

	best := &selection{members: []*externalapi.DomainHash{}}
	chosen := make([]*externalapi.DomainHash, 0, len(sortedCandidates))

	var search func(index int, weight uint64, remainingWeight uint64)
	search = func(index int, weight uint64, remainingWeight uint64) {
		if weight+remainingWeight < best.weight {
			return
		}
		if index == len(sortedCandidates) {
			current := &selection{members: chosen, weight: weight}
			if current.isBetterThan(best) {
				best = &selection{members: externalapi.CloneHashes(chosen), weight: weight}
			}
			return
		}

		candidate := sortedCandidates[index]
		candidateWeight := weights[*candidate]
		if !conflictsWithAny(candidate, chosen, conflictSet) {
			chosen = append(chosen, candidate)
			search(index+1, weight+candidateWeight, remainingWeight-candidateWeight)
			chosen = chosen[:len(chosen)-1]
		}
		search(index+1, weight, remainingWeight-candidateWeight)
	}
	search(0, 0, remainingWeight)

	return best.members
}

// selectGreedy adds candidates by descending weight, skipping any that
// conflicts with one already chosen
func selectGreedy(sortedCandidates []*externalapi.DomainHash, weights map[externalapi.DomainHash]uint64,
	conflictSet *model.ConflictSet) []*externalapi.DomainHash {

	ordered := externalapi.CloneHashes(sortedCandidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return weights[*ordered[i]] > weights[*ordered[j]]
	})

	chosen := make([]*externalapi.DomainHash, 0, len(ordered))
	for _, candidate := range ordered {
		if !conflictsWithAny(candidate, chosen, conflictSet) {
			chosen = append(chosen, candidate)
		}
	}
	hashes.Sort(chosen)
	return chosen
}
