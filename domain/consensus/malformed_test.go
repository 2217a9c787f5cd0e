package consensus

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/pkg/errors"
)

func TestSubmitMalformedEventLogs(t *testing.T) {
	// Without an executor the supplied event logs are trusted as they are
	h := newTestHarness(t, "TestSubmitMalformedEventLogs", 2, withoutExecutor())
	defer h.teardown(false)

	genesis := h.params.GenesisHash
	channel := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})

	tests := []struct {
		name     string
		eventLog externalapi.EventLog
	}{
		{name: "nil event", eventLog: externalapi.EventLog{nil}},
		{name: "nil produce", eventLog: externalapi.EventLog{(*externalapi.Produce)(nil)}},
		{name: "empty produce", eventLog: externalapi.EventLog{&externalapi.Produce{}}},
		{name: "produce without data", eventLog: externalapi.EventLog{&externalapi.Produce{Channel: channel}}},
		{name: "nil consume", eventLog: externalapi.EventLog{(*externalapi.Consume)(nil)}},
		{name: "consume without pattern", eventLog: externalapi.EventLog{
			&externalapi.Consume{Channels: []*externalapi.DomainHash{channel}}}},
		{name: "consume on nil channel", eventLog: externalapi.EventLog{
			&externalapi.Consume{Channels: []*externalapi.DomainHash{nil}, PatternHash: channel}}},
		{name: "nil comm", eventLog: externalapi.EventLog{(*externalapi.Comm)(nil)}},
		{name: "empty comm", eventLog: externalapi.EventLog{&externalapi.Comm{}}},
		{name: "comm with nil produce", eventLog: externalapi.EventLog{&externalapi.Comm{
			Consume:  &externalapi.Consume{Channels: []*externalapi.DomainHash{channel}, PatternHash: channel},
			Produces: []*externalapi.Produce{nil},
		}}},
	}

	block, eventLogs := h.buildBlock(h.validators[0], blockHashes(genesis),
		[]statestore.Op{statestore.Send("x", "1", false)})
	blockHash := consensushashing.BlockHash(block)

	for _, test := range tests {
		_, err := h.consensus.SubmitBlock(block, []externalapi.EventLog{test.eventLog})
		if !errors.Is(err, ruleerrors.ErrEventLogsMismatch) {
			t.Fatalf("%s: expected ErrEventLogsMismatch, got %+v", test.name, err)
		}

		blockInfo, err := h.consensus.GetBlockInfo(blockHash)
		if err != nil {
			t.Fatalf("%s: GetBlockInfo: %+v", test.name, err)
		}
		if blockInfo.Exists {
			t.Fatalf("%s: a block with malformed event logs was remembered", test.name)
		}

		results := h.consensus.SubmitBlocks([]*externalapi.BlockBundle{
			{Block: block, EventLogs: []externalapi.EventLog{test.eventLog}},
		})
		if !errors.Is(results[0].Err, ruleerrors.ErrEventLogsMismatch) {
			t.Fatalf("%s: SubmitBlocks: expected ErrEventLogsMismatch, got %+v", test.name, results[0].Err)
		}
	}

	// The same block with its real event logs is accepted and merges with
	// a sibling
	_, err := h.consensus.SubmitBlock(block, eventLogs)
	if err != nil {
		t.Fatalf("SubmitBlock: %+v", err)
	}
	sibling, _ := h.addBlock(h.validators[1], blockHashes(genesis), []statestore.Op{statestore.Send("y", "1", false)})
	child, insertion := h.addBlock(h.validators[0], blockHashes(blockHash, sibling))

	expectedSelected := hashes.SortedCopy(blockHashes(blockHash, sibling))
	if !externalapi.HashesEqual(insertion.MergeResult.Selected, expectedSelected) {
		t.Fatalf("Expected both parents of %s to be selected, got %s", child, insertion.MergeResult.Selected)
	}

	storedLogs, err := h.consensus.GetEventLogs(blockHash)
	if err != nil {
		t.Fatalf("GetEventLogs: %+v", err)
	}
	if len(storedLogs) != 1 || !storedLogs[0].Equal(eventLogs[0]) {
		t.Fatalf("Expected the stored event logs to be the real ones, got %v", storedLogs)
	}
}

func TestSubmitMalformedBlocks(t *testing.T) {
	h := newTestHarness(t, "TestSubmitMalformedBlocks", 1)
	defer h.teardown(false)

	genesis := h.params.GenesisHash

	tests := []struct {
		name   string
		mutate func(block *externalapi.DomainBlock) *externalapi.DomainBlock
	}{
		{
			name:   "nil block",
			mutate: func(*externalapi.DomainBlock) *externalapi.DomainBlock { return nil },
		},
		{
			name: "nil header",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Header = nil
				return block
			},
		},
		{
			name: "nil parent",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Header.Parents = append(block.Header.Parents, nil)
				return block
			},
		},
		{
			name: "nil justification",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Header.Justifications = append(block.Header.Justifications, nil)
				return block
			},
		},
		{
			name: "justification without a block",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Header.Justifications = append(block.Header.Justifications,
					&externalapi.Justification{Validator: h.validators[0].ID})
				return block
			},
		},
		{
			name: "nil bond",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Header.Bonds = append(block.Header.Bonds, nil)
				return block
			},
		},
		{
			name: "nil deploy",
			mutate: func(block *externalapi.DomainBlock) *externalapi.DomainBlock {
				block.Deploys[0] = nil
				return block
			},
		},
	}

	for _, test := range tests {
		block, eventLogs := h.buildBlock(h.validators[0], blockHashes(genesis),
			[]statestore.Op{statestore.Send(test.name, "1", false)})
		malformed := test.mutate(block)

		result, err := h.consensus.SubmitBlock(malformed, eventLogs)
		if result != nil || !errors.Is(err, ruleerrors.ErrMalformedBlock) {
			t.Fatalf("%s: expected ErrMalformedBlock, got %+v", test.name, err)
		}

		results := h.consensus.SubmitBlocks([]*externalapi.BlockBundle{{Block: malformed, EventLogs: eventLogs}})
		if !errors.Is(results[0].Err, ruleerrors.ErrMalformedBlock) {
			t.Fatalf("%s: SubmitBlocks: expected ErrMalformedBlock, got %+v", test.name, results[0].Err)
		}
		if results[0].BlockHash != nil {
			t.Fatalf("%s: SubmitBlocks reported hash %s for a malformed block", test.name, results[0].BlockHash)
		}
	}

	if tip := h.currentTip(); !tip.Equal(genesis) {
		t.Fatalf("Malformed blocks changed the tip to %s", tip)
	}
}
