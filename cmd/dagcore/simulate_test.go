package main

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/kaspanet/mergedag/domain/statestore"
)

func TestGenesisValidators(t *testing.T) {
	tests := []struct {
		params        *dagconfig.Params
		expectedCount int
	}{
		{params: &dagconfig.DevnetParams, expectedCount: 3},
		{params: &dagconfig.SimnetParams, expectedCount: 1},
	}
	for _, test := range tests {
		validators, err := genesisValidators(test.params)
		if err != nil {
			t.Fatalf("%s: genesisValidators: %+v", test.params.Name, err)
		}
		if len(validators) != test.expectedCount {
			t.Fatalf("%s: expected %d validators, got %d", test.params.Name, test.expectedCount, len(validators))
		}
	}
}

func TestSimulate(t *testing.T) {
	params := &dagconfig.DevnetParams
	stateStore := statestore.New()
	c, teardown, err := consensus.NewFactory().NewTestConsensus(&consensus.Config{
		Params:     params,
		StateStore: stateStore,
		Executor:   statestore.NewExecutor(stateStore),
	}, "TestSimulate")
	if err != nil {
		t.Fatalf("NewTestConsensus: %+v", err)
	}
	defer teardown(false)

	sim, err := newSimulator(c, stateStore, params)
	if err != nil {
		t.Fatalf("newSimulator: %+v", err)
	}
	err = sim.run(2*len(sim.validators), make(chan struct{}))
	if err != nil {
		t.Fatalf("run: %+v", err)
	}

	// The last round's blocks are siblings
	tips, err := c.Tips()
	if err != nil {
		t.Fatalf("Tips: %+v", err)
	}
	if len(tips) != len(sim.validators) {
		t.Fatalf("Expected %d tips, got %d", len(sim.validators), len(tips))
	}

	// A simulation refuses to extend a DAG whose states it does not hold
	_, err = newSimulator(c, statestore.New(), params)
	if err == nil {
		t.Fatalf("Expected newSimulator to refuse a non-fresh DAG")
	}
}

func TestRoundDeploy(t *testing.T) {
	for i := 0; i < 3; i++ {
		ops := roundDeploy(0, i)
		if len(ops) != 1 || !ops[0].IsSend {
			t.Fatalf("Expected every validator to send in the first round")
		}
	}
	if ops := roundDeploy(4, 0); !ops[0].IsSend || string(ops[0].Channel) != roundChannel(4) {
		t.Fatalf("Expected the first validator to send on the round's channel, got %+v", ops[0])
	}
	if ops := roundDeploy(4, 2); ops[0].IsSend || string(ops[0].Channel) != roundChannel(3) {
		t.Fatalf("Expected the other validators to receive from the previous round, got %+v", ops[0])
	}
}
