package consensus

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/consensus/utils/testutils"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/kaspanet/mergedag/domain/statestore"
)

const testStake = 100

type testHarness struct {
	t          *testing.T
	params     *dagconfig.Params
	stateStore *statestore.StateStore
	consensus  externalapi.Consensus
	teardown   func(keepDataDir bool)
	validators []*testutils.Validator
	builder    *testutils.BlockBuilder
}

// harnessOption adjusts the consensus configuration of a test harness
type harnessOption func(config *Config)

// withFaultTolerance overrides the fault tolerance of the test network
func withFaultTolerance(faultTolerance float64) harnessOption {
	return func(config *Config) {
		config.FaultTolerance = faultTolerance
	}
}

// withoutExecutor makes the consensus trust the supplied event logs
func withoutExecutor() harnessOption {
	return func(config *Config) {
		config.Executor = nil
	}
}

func newTestHarness(t *testing.T, testName string, validatorCount int, options ...harnessOption) *testHarness {
	validators, err := testutils.NewValidators(validatorCount)
	if err != nil {
		t.Fatalf("%s: NewValidators: %+v", testName, err)
	}
	params := testutils.NewTestParams(&dagconfig.DevnetParams, validators, testStake)
	stateStore := statestore.New()

	config := testConfig(params, stateStore)
	for _, option := range options {
		option(config)
	}

	tc, teardown, err := NewFactory().NewTestConsensus(config, testName)
	if err != nil {
		t.Fatalf("%s: Error setting up consensus: %+v", testName, err)
	}

	return &testHarness{
		t:          t,
		params:     params,
		stateStore: stateStore,
		consensus:  tc,
		teardown:   teardown,
		validators: validators,
		builder:    testutils.NewBlockBuilder(tc, stateStore),
	}
}

func testConfig(params *dagconfig.Params, stateStore *statestore.StateStore) *Config {
	return &Config{
		Params:     params,
		StateStore: stateStore,
		Executor:   statestore.NewExecutor(stateStore),
	}
}

func (h *testHarness) buildBlock(validator *testutils.Validator, parentHashes []*externalapi.DomainHash,
	deploys ...[]statestore.Op) (*externalapi.DomainBlock, []externalapi.EventLog) {

	block, eventLogs, err := h.builder.BuildBlock(validator, parentHashes, deploys...)
	if err != nil {
		h.t.Fatalf("BuildBlock: %+v", err)
	}
	return block, eventLogs
}

// addBlock builds a block and submits it, failing the test if it is rejected
func (h *testHarness) addBlock(validator *testutils.Validator, parentHashes []*externalapi.DomainHash,
	deploys ...[]statestore.Op) (*externalapi.DomainHash, *externalapi.BlockInsertionResult) {

	block, eventLogs := h.buildBlock(validator, parentHashes, deploys...)
	result, err := h.consensus.SubmitBlock(block, eventLogs)
	if err != nil {
		h.t.Fatalf("SubmitBlock: %+v", err)
	}
	blockHash := consensushashing.BlockHash(block)
	if !result.BlockHash.Equal(blockHash) {
		h.t.Fatalf("SubmitBlock reported hash %s for block %s", result.BlockHash, blockHash)
	}
	return blockHash, result
}

func (h *testHarness) blockStatus(blockHash *externalapi.DomainHash) externalapi.BlockStatus {
	blockInfo, err := h.consensus.GetBlockInfo(blockHash)
	if err != nil {
		h.t.Fatalf("GetBlockInfo: %+v", err)
	}
	if !blockInfo.Exists {
		h.t.Fatalf("block %s unexpectedly does not exist", blockHash)
	}
	return blockInfo.BlockStatus
}

func (h *testHarness) currentTip() *externalapi.DomainHash {
	tip, err := h.consensus.CurrentTip()
	if err != nil {
		h.t.Fatalf("CurrentTip: %+v", err)
	}
	return tip
}

func (h *testHarness) finalizedFringe() []*externalapi.DomainHash {
	fringe, err := h.consensus.FinalizedFringe()
	if err != nil {
		h.t.Fatalf("FinalizedFringe: %+v", err)
	}
	return fringe
}

func blockHashes(hashList ...*externalapi.DomainHash) []*externalapi.DomainHash {
	return hashList
}
