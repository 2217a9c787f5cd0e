package main

import (
	"fmt"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/kaspanet/mergedag/domain/consensus/utils/testutils"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/kaspanet/mergedag/infrastructure/os/signal"
	"github.com/pkg/errors"
)

// simulator drives a consensus with blocks of the well-known devnet and
// simnet validators. In every round all validators build on the same tips,
// so the blocks of a round are siblings that the next round merges.
type simulator struct {
	consensus  externalapi.Consensus
	builder    *testutils.BlockBuilder
	validators []*testutils.Validator
	maxParents int
}

func newSimulator(consensus externalapi.Consensus, stateStore *statestore.StateStore,
	params *dagconfig.Params) (*simulator, error) {

	validators, err := genesisValidators(params)
	if err != nil {
		return nil, err
	}

	tips, err := consensus.Tips()
	if err != nil {
		return nil, err
	}
	if len(tips) != 1 || !tips[0].Equal(params.GenesisHash) {
		return nil, errors.Errorf("simulation requires a fresh data directory: the state of existing "+
			"blocks is not kept across restarts, and the DAG already has %d tips", len(tips))
	}

	return &simulator{
		consensus:  consensus,
		builder:    testutils.NewBlockBuilder(consensus, stateStore),
		validators: validators,
		maxParents: params.MaxBlockParents,
	}, nil
}

// genesisValidators returns the test validators bonded in the genesis of
// params, failing if any bond belongs to an unknown key
func genesisValidators(params *dagconfig.Params) ([]*testutils.Validator, error) {
	bonds := params.GenesisBlock.Header.Bonds
	validators, err := testutils.NewValidators(len(bonds))
	if err != nil {
		return nil, err
	}
	for i, bond := range bonds {
		if bond.Validator != validators[i].ID {
			return nil, errors.Errorf("genesis validator %s of network %s has no known key",
				bond.Validator, params.Name)
		}
	}
	return validators, nil
}

// run submits blockCount blocks, or stops earlier if interrupted
func (s *simulator) run(blockCount int, interrupt <-chan struct{}) error {
	submitted := 0
	for round := 0; submitted < blockCount; round++ {
		if signal.InterruptRequested(interrupt) {
			log.Infof("Simulation interrupted after %d blocks", submitted)
			return nil
		}

		roundSize := len(s.validators)
		if blockCount-submitted < roundSize {
			roundSize = blockCount - submitted
		}
		err := s.runRound(round, roundSize)
		if err != nil {
			return err
		}
		submitted += roundSize
	}
	log.Infof("Simulation submitted %d blocks", submitted)
	return nil
}

func (s *simulator) runRound(round int, roundSize int) error {
	parents, err := s.roundParents()
	if err != nil {
		return err
	}

	bundles := make([]*externalapi.BlockBundle, roundSize)
	for i := range bundles {
		validator := s.validators[i]
		block, eventLogs, err := s.builder.BuildBlock(validator, parents, roundDeploy(round, i))
		if err != nil {
			return errors.Wrapf(err, "round %d: failed to build the block of validator %s", round, validator.ID)
		}
		bundles[i] = &externalapi.BlockBundle{Block: block, EventLogs: eventLogs}
	}

	results := s.consensus.SubmitBlocks(bundles)
	for _, result := range results {
		if result.Err != nil {
			return errors.Wrapf(result.Err, "round %d: block %s was not accepted", round, result.BlockHash)
		}
		insertion := result.InsertionResult
		log.Debugf("Round %d: accepted %s, merged %d and rejected %d parents, finalized %d blocks",
			round, result.BlockHash, len(insertion.MergeResult.Selected), len(insertion.MergeResult.Rejected),
			len(insertion.FinalizedDelta))
	}

	tip, err := s.consensus.CurrentTip()
	if err != nil {
		return err
	}
	log.Infof("Round %d done, tip is %s", round, tip)
	return nil
}

// roundParents returns the current tip followed by the other DAG tips in
// hash order, capped at the network's parent limit
func (s *simulator) roundParents() ([]*externalapi.DomainHash, error) {
	tip, err := s.consensus.CurrentTip()
	if err != nil {
		return nil, err
	}
	tips, err := s.consensus.Tips()
	if err != nil {
		return nil, err
	}

	parents := []*externalapi.DomainHash{tip}
	for _, candidate := range hashes.SortedCopy(tips) {
		if len(parents) == s.maxParents {
			break
		}
		if !candidate.Equal(tip) {
			parents = append(parents, candidate)
		}
	}
	return parents, nil
}

// roundDeploy returns the ops of validator i in round. The first validator
// sends a datum on the round's channel and the others receive from the
// channel of the previous round, so in rounds with three or more validators
// two receivers compete for a single datum and one of them gets rejected
// by the merge of the next round.
func roundDeploy(round int, i int) []statestore.Op {
	if i == 0 || round == 0 {
		return []statestore.Op{statestore.Send(roundChannel(round), fmt.Sprintf("%d/%d", round, i), false)}
	}
	return []statestore.Op{statestore.Receive(roundChannel(round-1), "*", false)}
}

func roundChannel(round int) string {
	return fmt.Sprintf("round-%d", round)
}
