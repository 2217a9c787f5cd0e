package consensus

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashset"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/pkg/errors"
)

func TestEquivocation(t *testing.T) {
	h := newTestHarness(t, "TestEquivocation", 3)
	defer h.teardown(false)

	genesis := h.params.GenesisHash
	equivocator := h.validators[0]

	b1, _ := h.addBlock(equivocator, blockHashes(genesis), []statestore.Op{statestore.Send("x", "1", false)})
	if tip := h.currentTip(); !tip.Equal(b1) {
		t.Fatalf("Expected the tip to be %s, got %s", b1, tip)
	}

	// A second block at the same sequence number, justifying nothing
	equivocation, eventLogs, err := h.builder.BuildBlockWithJustifications(equivocator, blockHashes(genesis),
		map[externalapi.ValidatorID]*externalapi.DomainHash{}, []statestore.Op{statestore.Send("x", "2", false)})
	if err != nil {
		t.Fatalf("BuildBlockWithJustifications: %+v", err)
	}
	b1Prime := consensushashing.BlockHash(equivocation)

	result, err := h.consensus.SubmitBlock(equivocation, eventLogs)
	if result != nil {
		t.Fatalf("Expected no insertion result for an equivocating block")
	}
	kind, ok := ruleerrors.KindOf(err)
	if !ok || kind != ruleerrors.EquivocationFault {
		t.Fatalf("Expected an EquivocationFault, got %+v", err)
	}
	var evidence ruleerrors.ErrEquivocation
	if !errors.As(err, &evidence) {
		t.Fatalf("Expected the error to carry ErrEquivocation, got %+v", err)
	}
	if evidence.Validator != equivocator.ID || evidence.SequenceNumber != 1 ||
		!evidence.ExistingBlock.Equal(b1) || !evidence.NewBlock.Equal(b1Prime) {

		t.Fatalf("Unexpected equivocation evidence %+v", evidence)
	}

	for _, blockHash := range blockHashes(b1, b1Prime) {
		if status := h.blockStatus(blockHash); status != externalapi.StatusEquivocating {
			t.Fatalf("Expected block %s to be Equivocating, got %s", blockHash, status)
		}
	}

	equivocators, err := h.consensus.Equivocators()
	if err != nil {
		t.Fatalf("Equivocators: %+v", err)
	}
	if len(equivocators) != 1 || equivocators[0] != equivocator.ID {
		t.Fatalf("Expected %s to be the only equivocator, got %v", equivocator.ID, equivocators)
	}

	// Nothing supports either of the blocks anymore
	if tip := h.currentTip(); !tip.Equal(genesis) {
		t.Fatalf("Expected the tip to fall back to genesis, got %s", tip)
	}

	b2, insertion := h.addBlock(h.validators[1], blockHashes(b1, b1Prime))
	mergeResult := insertion.MergeResult
	if len(mergeResult.Selected) != 0 {
		t.Fatalf("Expected no equivocating block to be selected, got %s", mergeResult.Selected)
	}
	expectedRejected := blockHashes(b1, b1Prime)
	if b1Prime.Less(b1) {
		expectedRejected = blockHashes(b1Prime, b1)
	}
	if !externalapi.HashesEqual(mergeResult.Rejected, expectedRejected) {
		t.Fatalf("Expected both equivocating blocks to be rejected, got %s", mergeResult.Rejected)
	}
	if len(mergeResult.RejectedDeploys) != 2 {
		t.Fatalf("Expected the deploys of both equivocating blocks to be rejected, got %s",
			mergeResult.RejectedDeploys)
	}
	if !mergeResult.PostStateCommitment.Equal(externalapi.NewZeroHash()) {
		t.Fatalf("Expected the merge to fall back to the post-state of genesis, got %s",
			mergeResult.PostStateCommitment)
	}
	if !insertion.Tip.Equal(b2) {
		t.Fatalf("Expected the tip to be %s, got %s", b2, insertion.Tip)
	}

	for _, blockHash := range blockHashes(b1, b1Prime) {
		if status := h.blockStatus(blockHash); status != externalapi.StatusEquivocating {
			t.Fatalf("Expected block %s to stay Equivocating after being merged, got %s", blockHash, status)
		}
	}

	_, err = h.consensus.SubmitBlock(equivocation, eventLogs)
	if !errors.Is(err, ruleerrors.ErrDuplicateBlock) {
		t.Fatalf("Expected resubmitting an equivocating block to fail with ErrDuplicateBlock, got %+v", err)
	}
}

// submitEquivocatingBlock submits a block expected to be kept as
// equivocation evidence
func submitEquivocatingBlock(t *testing.T, c externalapi.Consensus, block *externalapi.DomainBlock,
	eventLogs []externalapi.EventLog) {

	_, err := c.SubmitBlock(block, eventLogs)
	kind, ok := ruleerrors.KindOf(err)
	if !ok || kind != ruleerrors.EquivocationFault {
		t.Fatalf("Expected an EquivocationFault, got %+v", err)
	}
}

func submitBlock(t *testing.T, c externalapi.Consensus, block *externalapi.DomainBlock,
	eventLogs []externalapi.EventLog) *externalapi.BlockInsertionResult {

	result, err := c.SubmitBlock(block, eventLogs)
	if err != nil {
		t.Fatalf("SubmitBlock: %+v", err)
	}
	return result
}

func TestEquivocationArrivalOrder(t *testing.T) {
	nodeA := newTestHarness(t, "TestEquivocationArrivalOrderA", 3)
	defer nodeA.teardown(false)

	// Node B shares the state store, so it knows every state node A computed
	nodeB, teardown, err := NewFactory().NewTestConsensus(
		testConfig(nodeA.params, nodeA.stateStore), "TestEquivocationArrivalOrderB")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	genesis := nodeA.params.GenesisHash
	equivocator := nodeA.validators[0]

	b1Block, b1EventLogs := nodeA.buildBlock(equivocator, blockHashes(genesis),
		[]statestore.Op{statestore.Send("x", "1", false)})
	b1 := consensushashing.BlockHash(b1Block)
	submitBlock(t, nodeA.consensus, b1Block, b1EventLogs)

	// An honest block that only knows b1
	mBlock, mEventLogs := nodeA.buildBlock(nodeA.validators[1], blockHashes(b1),
		[]statestore.Op{statestore.Send("y", "1", false)})
	m := consensushashing.BlockHash(mBlock)
	submitBlock(t, nodeA.consensus, mBlock, mEventLogs)

	b1PrimeBlock, b1PrimeEventLogs, err := nodeA.builder.BuildBlockWithJustifications(equivocator,
		blockHashes(genesis), map[externalapi.ValidatorID]*externalapi.DomainHash{},
		[]statestore.Op{statestore.Send("x", "2", false)})
	if err != nil {
		t.Fatalf("BuildBlockWithJustifications: %+v", err)
	}
	b1Prime := consensushashing.BlockHash(b1PrimeBlock)
	submitEquivocatingBlock(t, nodeA.consensus, b1PrimeBlock, b1PrimeEventLogs)

	// Node B sees the equivocation before the honest block
	submitBlock(t, nodeB, b1Block, b1EventLogs)
	submitEquivocatingBlock(t, nodeB, b1PrimeBlock, b1PrimeEventLogs)
	insertionB := submitBlock(t, nodeB, mBlock, mEventLogs)

	if !externalapi.HashesEqual(insertionB.MergeResult.Selected, blockHashes(b1)) {
		t.Fatalf("Expected node B to select %s for %s, got %s", b1, m, insertionB.MergeResult.Selected)
	}

	for name, c := range map[string]externalapi.Consensus{"A": nodeA.consensus, "B": nodeB} {
		blockInfo, err := c.GetBlockInfo(m)
		if err != nil {
			t.Fatalf("Node %s: GetBlockInfo: %+v", name, err)
		}
		if !blockInfo.PreStateCommitment.Equal(insertionB.MergeResult.PostStateCommitment) {
			t.Fatalf("Node %s: expected the pre-state of %s to be %s, got %s",
				name, m, insertionB.MergeResult.PostStateCommitment, blockInfo.PreStateCommitment)
		}

		// The equivocation is outside the past of m, so recomputing the
		// merge after both blocks arrived gives the same result
		mergeResult, err := c.MergeResultFor(m)
		if err != nil {
			t.Fatalf("Node %s: MergeResultFor: %+v", name, err)
		}
		if !mergeResult.PostStateCommitment.Equal(blockInfo.PreStateCommitment) ||
			!externalapi.HashesEqual(mergeResult.Selected, blockHashes(b1)) {

			t.Fatalf("Node %s: recomputed merge of %s does not match the stored pre-state: %+v", name, m, mergeResult)
		}
	}

	// A block that has both equivocating blocks in its past excludes them on
	// both nodes
	childBlock, childEventLogs := nodeA.buildBlock(nodeA.validators[2], blockHashes(m, b1Prime))
	insertionA := submitBlock(t, nodeA.consensus, childBlock, childEventLogs)
	insertionB = submitBlock(t, nodeB, childBlock, childEventLogs)

	for name, insertion := range map[string]*externalapi.BlockInsertionResult{"A": insertionA, "B": insertionB} {
		mergeResult := insertion.MergeResult
		if !externalapi.HashesEqual(mergeResult.Selected, blockHashes(m)) {
			t.Fatalf("Node %s: expected only %s to be selected, got %s", name, m, mergeResult.Selected)
		}
		if !externalapi.HashesEqual(mergeResult.Rejected, blockHashes(b1Prime)) {
			t.Fatalf("Node %s: expected %s to be rejected, got %s", name, b1Prime, mergeResult.Rejected)
		}
	}
	if !insertionA.MergeResult.PostStateCommitment.Equal(insertionB.MergeResult.PostStateCommitment) {
		t.Fatalf("The nodes disagree on the pre-state of the child: %s and %s",
			insertionA.MergeResult.PostStateCommitment, insertionB.MergeResult.PostStateCommitment)
	}
}

func TestFinalizingPastEquivocation(t *testing.T) {
	// With one of three validators equivocating, the other two only reach
	// finality when half of the stake may be faulty
	h := newTestHarness(t, "TestFinalizingPastEquivocation", 3, withFaultTolerance(0.5))
	defer h.teardown(false)

	genesis := h.params.GenesisHash
	equivocator := h.validators[0]

	b1, _ := h.addBlock(equivocator, blockHashes(genesis), []statestore.Op{statestore.Send("x", "1", false)})
	equivocation, eventLogs, err := h.builder.BuildBlockWithJustifications(equivocator, blockHashes(genesis),
		map[externalapi.ValidatorID]*externalapi.DomainHash{}, []statestore.Op{statestore.Send("x", "2", false)})
	if err != nil {
		t.Fatalf("BuildBlockWithJustifications: %+v", err)
	}
	b1Prime := consensushashing.BlockHash(equivocation)
	submitEquivocatingBlock(t, h.consensus, equivocation, eventLogs)

	b2, _ := h.addBlock(h.validators[1], blockHashes(b1, b1Prime))
	b3, insertion := h.addBlock(h.validators[2], blockHashes(b2))

	finalized := hashset.NewFromSlice(insertion.FinalizedDelta...)
	for _, blockHash := range blockHashes(b1, b1Prime, b2) {
		if !finalized.Contains(blockHash) {
			t.Fatalf("Expected %s to be finalized by %s, got %s", blockHash, b3, insertion.FinalizedDelta)
		}
	}

	fringe := h.finalizedFringe()
	if !fringe[len(fringe)-1].Equal(b2) {
		t.Fatalf("Expected %s to be the last finalized block, got %s", b2, fringe[len(fringe)-1])
	}
	if !externalapi.HashesEqual(fringe[len(fringe)-len(insertion.FinalizedDelta):], insertion.FinalizedDelta) {
		t.Fatalf("Expected the fringe to end with the finalized delta %s, got %s", insertion.FinalizedDelta, fringe)
	}

	// Finalization settles the equivocating blocks without making them
	// mergeable
	for _, blockHash := range blockHashes(b1, b1Prime) {
		if status := h.blockStatus(blockHash); status != externalapi.StatusEquivocating {
			t.Fatalf("Expected finalized block %s to stay Equivocating, got %s", blockHash, status)
		}
	}
	if status := h.blockStatus(b2); status != externalapi.StatusFinalized {
		t.Fatalf("Expected %s to be Finalized, got %s", b2, status)
	}
	if status := h.blockStatus(b3); status == externalapi.StatusFinalized {
		t.Fatalf("Block %s was finalized before the other validators built on it", b3)
	}
}
