package statestore

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/processes/conflictdetector"
)

func execute(t *testing.T, store *StateStore, preState *externalapi.DomainHash,
	ops ...Op) (externalapi.EventLog, *externalapi.DomainHash) {

	handle, err := store.Snapshot(preState)
	if err != nil {
		t.Fatalf("Snapshot: %+v", err)
	}
	eventLog, postState, err := NewExecutor(store).ExecuteAndTrace(EncodePayload(ops...), handle)
	if err != nil {
		t.Fatalf("ExecuteAndTrace: %+v", err)
	}
	return eventLog, postState
}

func merge(t *testing.T, store *StateStore, base *externalapi.DomainHash,
	postStates ...*externalapi.DomainHash) *externalapi.DomainHash {

	handle, err := store.Snapshot(base)
	if err != nil {
		t.Fatalf("Snapshot: %+v", err)
	}
	for _, postState := range postStates {
		handle, err = store.ApplyDelta(handle, postState)
		if err != nil {
			t.Fatalf("ApplyDelta: %+v", err)
		}
	}
	commitment, err := handle.Commitment()
	if err != nil {
		t.Fatalf("Commitment: %+v", err)
	}
	return commitment
}

func TestEmptyState(t *testing.T) {
	store := New()
	if !store.Has(externalapi.NewZeroHash()) {
		t.Fatalf("a new store does not hold the empty state")
	}

	_, postState := execute(t, store, externalapi.NewZeroHash())
	if !postState.IsZero() {
		t.Fatalf("an empty deploy changed the empty state to %s", postState)
	}

	_, postState = execute(t, store, externalapi.NewZeroHash(), Send("x", "1", false), Receive("x", "*", false))
	if !postState.IsZero() {
		t.Fatalf("a send that was received left the state at %s", postState)
	}
}

func TestUnknownState(t *testing.T) {
	store := New()
	unknown := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	_, err := store.Snapshot(unknown)
	if err == nil {
		t.Fatalf("Snapshot of an unknown state unexpectedly succeeded")
	}

	handle, err := store.Snapshot(externalapi.NewZeroHash())
	if err != nil {
		t.Fatalf("Snapshot: %+v", err)
	}
	_, err = store.ApplyDelta(handle, unknown)
	if err == nil {
		t.Fatalf("ApplyDelta of an unknown state unexpectedly succeeded")
	}

	_, err = New().ApplyDelta(handle, externalapi.NewZeroHash())
	if err == nil {
		t.Fatalf("ApplyDelta accepted a handle of another store")
	}
}

func TestExecutorEventLog(t *testing.T) {
	store := New()
	_, withContinuation := execute(t, store, externalapi.NewZeroHash(), Receive("x", "p", true))

	eventLog, postState := execute(t, store, withContinuation, Send("x", "1", false))
	if len(eventLog) != 2 {
		t.Fatalf("expected a produce and a comm, got %d events", len(eventLog))
	}
	if _, ok := eventLog[0].(*externalapi.Produce); !ok {
		t.Fatalf("expected the first event to be a produce, got %T", eventLog[0])
	}
	comm, ok := eventLog[1].(*externalapi.Comm)
	if !ok {
		t.Fatalf("expected the second event to be a comm, got %T", eventLog[1])
	}
	if !comm.Consume.Persistent {
		t.Fatalf("the comm does not refer to the persistent continuation")
	}
	if !postState.Equal(withContinuation) {
		t.Fatalf("a send received by a persistent continuation changed the state:\n%s",
			store.Dump(postState))
	}
}

func TestApplyDelta(t *testing.T) {
	store := New()
	_, base := execute(t, store, externalapi.NewZeroHash(), Send("a", "1", false), Send("b", "1", false))

	_, postStateA := execute(t, store, base, Receive("a", "*", false), Send("c", "1", false))
	_, postStateB := execute(t, store, base, Receive("b", "*", false))

	_, sequential := execute(t, store, base,
		Receive("a", "*", false), Send("c", "1", false), Receive("b", "*", false))

	merged := merge(t, store, base, postStateA, postStateB)
	if !merged.Equal(sequential) {
		t.Fatalf("merged state differs from sequential execution.\nmerged: %s\nsequential: %s",
			store.Dump(merged), store.Dump(sequential))
	}

	reversed := merge(t, store, base, postStateB, postStateA)
	if !reversed.Equal(merged) {
		t.Fatalf("the order of ApplyDelta calls changed the merged state")
	}

	idempotent := merge(t, store, base, postStateA)
	if !idempotent.Equal(postStateA) {
		t.Fatalf("applying a single delta onto its base did not reproduce its state")
	}
}

func TestApplyDeltaRemovingMissingTuple(t *testing.T) {
	store := New()
	_, base := execute(t, store, externalapi.NewZeroHash(), Send("a", "1", false))
	_, postStateA := execute(t, store, base, Receive("a", "*", false))
	_, postStateB := execute(t, store, base, Receive("a", "*", false))

	handle, err := store.Snapshot(base)
	if err != nil {
		t.Fatalf("Snapshot: %+v", err)
	}
	handle, err = store.ApplyDelta(handle, postStateA)
	if err != nil {
		t.Fatalf("ApplyDelta: %+v", err)
	}
	_, err = store.ApplyDelta(handle, postStateB)
	if err == nil {
		t.Fatalf("two receives of the same datum were applied together")
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	_, err := DecodePayload([]byte{0xff})
	if err == nil {
		t.Fatalf("DecodePayload unexpectedly succeeded on a truncated payload")
	}

	ops, err := DecodePayload(EncodePayload(Send("x", "1", true), Receive("y", "", false)))
	if err != nil {
		t.Fatalf("DecodePayload: %+v", err)
	}
	if len(ops) != 2 || !ops[0].IsSend || !ops[0].Persistent || ops[1].IsSend || string(ops[1].Channel) != "y" {
		t.Fatalf("unexpected decoded ops %+v", ops)
	}
}

func randomOp(random *rand.Rand) Op {
	channel := fmt.Sprintf("channel-%d", random.Intn(3))
	value := fmt.Sprintf("value-%d", random.Intn(2))
	persistent := random.Intn(2) == 0
	if random.Intn(2) == 0 {
		return Send(channel, value, persistent)
	}
	return Receive(channel, value, persistent)
}

func randomOps(random *rand.Rand, maxOps int) []Op {
	ops := make([]Op, random.Intn(maxOps+1))
	for i := range ops {
		ops[i] = randomOp(random)
	}
	return ops
}

// TestNonConflictingDeploysMerge checks that deploys the conflict detector
// reports as commuting reach the same state in either order, and that
// merging their post-states reaches it as well
func TestNonConflictingDeploysMerge(t *testing.T) {
	const trials = 5000
	random := rand.New(rand.NewSource(7))
	cd := conflictdetector.New(nil, nil, nil, nil, nil, 1)
	store := New()

	commutingPairs := 0
	for trial := 0; trial < trials; trial++ {
		_, base := execute(t, store, externalapi.NewZeroHash(), randomOps(random, 6)...)
		opsA := randomOps(random, 3)
		opsB := randomOps(random, 3)

		eventLogA, postStateA := execute(t, store, base, opsA...)
		eventLogB, postStateB := execute(t, store, base, opsB...)
		if cd.ConflictsBetween(eventLogA, eventLogB) {
			continue
		}
		commutingPairs++

		_, stateAB := execute(t, store, postStateA, opsB...)
		_, stateBA := execute(t, store, postStateB, opsA...)
		if !stateAB.Equal(stateBA) {
			t.Fatalf("trial %d: commuting deploys diverge.\nbase: %s\nA: %+v\nB: %+v\nA then B: %s\nB then A: %s",
				trial, store.Dump(base), opsA, opsB, store.Dump(stateAB), store.Dump(stateBA))
		}

		merged := merge(t, store, base, postStateA, postStateB)
		if !merged.Equal(stateAB) {
			t.Fatalf("trial %d: merged state differs from sequential execution.\nbase: %s\nA: %+v\nB: %+v\n"+
				"merged: %s\nsequential: %s",
				trial, store.Dump(base), opsA, opsB, store.Dump(merged), store.Dump(stateAB))
		}
	}

	if commutingPairs == 0 {
		t.Fatalf("no commuting pair was generated in %d trials", trials)
	}
}
