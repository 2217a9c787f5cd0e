package consensus

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/ruleerrors"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/statestore"
	"github.com/pkg/errors"
)

func TestSubmitBlockRejections(t *testing.T) {
	h := newTestHarness(t, "TestSubmitBlockRejections", 3)
	defer h.teardown(false)

	genesis := h.params.GenesisHash
	unknownHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xff})
	otherState := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xee})

	tests := []struct {
		name            string
		mutate          func(block *externalapi.DomainBlock)
		skipResign      bool
		expectedErr     error
		expectedKind    ruleerrors.FaultKind
		expectedInvalid bool
	}{
		{
			name: "unknown parent",
			mutate: func(block *externalapi.DomainBlock) {
				block.Header.Parents = append(block.Header.Parents, unknownHash)
			},
			expectedErr:     ruleerrors.ErrMissingParents{},
			expectedKind:    ruleerrors.StructuralFault,
			expectedInvalid: false,
		},
		{
			name: "bad signature",
			mutate: func(block *externalapi.DomainBlock) {
				block.Signature[0] ^= 0xff
			},
			skipResign:      true,
			expectedErr:     ruleerrors.ErrBadSignature,
			expectedKind:    ruleerrors.StructuralFault,
			expectedInvalid: false,
		},
		{
			name: "wrong post-state",
			mutate: func(block *externalapi.DomainBlock) {
				block.Header.PostStateCommitment = otherState
			},
			expectedErr:     ruleerrors.ErrPostStateMismatch,
			expectedKind:    ruleerrors.ExecutionFault,
			expectedInvalid: true,
		},
		{
			name: "wrong sequence number",
			mutate: func(block *externalapi.DomainBlock) {
				block.Header.SequenceNumber = 5
			},
			expectedErr:     ruleerrors.ErrUnexpectedSequenceNumber,
			expectedKind:    ruleerrors.StructuralFault,
			expectedInvalid: true,
		},
		{
			name: "duplicate parents",
			mutate: func(block *externalapi.DomainBlock) {
				block.Header.Parents = append(block.Header.Parents, block.Header.Parents[0])
			},
			expectedErr:     ruleerrors.ErrDuplicateParents,
			expectedKind:    ruleerrors.StructuralFault,
			expectedInvalid: true,
		},
		{
			name: "unexpected bonds",
			mutate: func(block *externalapi.DomainBlock) {
				block.Header.Bonds[0].Stake++
			},
			expectedErr:     ruleerrors.ErrUnexpectedBonds,
			expectedKind:    ruleerrors.StructuralFault,
			expectedInvalid: true,
		},
	}

	for _, test := range tests {
		block, eventLogs := h.buildBlock(h.validators[0], blockHashes(genesis),
			[]statestore.Op{statestore.Send(test.name, "1", false)})
		test.mutate(block)
		if !test.skipResign {
			err := h.validators[0].Sign(block)
			if err != nil {
				t.Fatalf("%s: Sign: %+v", test.name, err)
			}
		}
		blockHash := consensushashing.BlockHash(block)

		_, err := h.consensus.SubmitBlock(block, eventLogs)
		if err == nil {
			t.Fatalf("%s: expected an error", test.name)
		}
		if missingParents, ok := test.expectedErr.(ruleerrors.ErrMissingParents); ok {
			if !errors.As(err, &missingParents) {
				t.Fatalf("%s: expected ErrMissingParents, got %+v", test.name, err)
			}
			if !externalapi.HashesEqual(missingParents.MissingParentHashes, blockHashes(unknownHash)) {
				t.Fatalf("%s: expected the missing parents to be [%s], got %s",
					test.name, unknownHash, missingParents.MissingParentHashes)
			}
		} else if !errors.Is(err, test.expectedErr) {
			t.Fatalf("%s: expected %s, got %+v", test.name, test.expectedErr, err)
		}
		kind, ok := ruleerrors.KindOf(err)
		if !ok || kind != test.expectedKind {
			t.Fatalf("%s: expected a %s, got %+v", test.name, test.expectedKind, err)
		}

		blockInfo, err := h.consensus.GetBlockInfo(blockHash)
		if err != nil {
			t.Fatalf("%s: GetBlockInfo: %+v", test.name, err)
		}
		if blockInfo.Exists != test.expectedInvalid {
			t.Fatalf("%s: expected the block to be remembered: %t, got %t",
				test.name, test.expectedInvalid, blockInfo.Exists)
		}
		if !test.expectedInvalid {
			continue
		}
		if blockInfo.BlockStatus != externalapi.StatusInvalid {
			t.Fatalf("%s: expected the block to be Invalid, got %s", test.name, blockInfo.BlockStatus)
		}
		_, err = h.consensus.SubmitBlock(block, eventLogs)
		if !errors.Is(err, ruleerrors.ErrKnownInvalid) {
			t.Fatalf("%s: expected resubmission to fail with ErrKnownInvalid, got %+v", test.name, err)
		}
	}

	if tip := h.currentTip(); !tip.Equal(genesis) {
		t.Fatalf("Rejected blocks changed the tip to %s", tip)
	}
}

func TestResubmitAfterBadSignature(t *testing.T) {
	h := newTestHarness(t, "TestResubmitAfterBadSignature", 1)
	defer h.teardown(false)

	block, eventLogs := h.buildBlock(h.validators[0], blockHashes(h.params.GenesisHash))
	tampered := block.Clone()
	tampered.Signature[len(tampered.Signature)-1] ^= 0x01

	_, err := h.consensus.SubmitBlock(tampered, eventLogs)
	if !errors.Is(err, ruleerrors.ErrBadSignature) {
		t.Fatalf("Expected ErrBadSignature, got %+v", err)
	}

	// The signature is not covered by the block hash, so the correctly
	// signed block is still accepted
	result, err := h.consensus.SubmitBlock(block, eventLogs)
	if err != nil {
		t.Fatalf("SubmitBlock: %+v", err)
	}
	if !result.BlockHash.Equal(consensushashing.BlockHash(tampered)) {
		t.Fatalf("Expected the tampered and the original block to share a hash")
	}
}

func TestSubmitBlockWithInvalidAncestor(t *testing.T) {
	h := newTestHarness(t, "TestSubmitBlockWithInvalidAncestor", 2)
	defer h.teardown(false)

	genesis := h.params.GenesisHash
	invalid, eventLogs := h.buildBlock(h.validators[0], blockHashes(genesis))
	invalid.Header.SequenceNumber = 3
	err := h.validators[0].Sign(invalid)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	_, err = h.consensus.SubmitBlock(invalid, eventLogs)
	if !errors.Is(err, ruleerrors.ErrUnexpectedSequenceNumber) {
		t.Fatalf("Expected ErrUnexpectedSequenceNumber, got %+v", err)
	}
	invalidHash := consensushashing.BlockHash(invalid)

	child, childEventLogs := h.buildBlock(h.validators[1], blockHashes(genesis))
	child.Header.Parents = blockHashes(invalidHash)
	err = h.validators[1].Sign(child)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	_, err = h.consensus.SubmitBlock(child, childEventLogs)
	if !errors.Is(err, ruleerrors.ErrInvalidAncestor) {
		t.Fatalf("Expected ErrInvalidAncestor, got %+v", err)
	}
}

func TestQueriesAboutUnknownBlocks(t *testing.T) {
	h := newTestHarness(t, "TestQueriesAboutUnknownBlocks", 1)
	defer h.teardown(false)

	unknownHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xaa})

	blockInfo, err := h.consensus.GetBlockInfo(unknownHash)
	if err != nil {
		t.Fatalf("GetBlockInfo: %+v", err)
	}
	if blockInfo.Exists {
		t.Fatalf("Expected an unknown block not to exist")
	}

	_, err = h.consensus.GetParents(unknownHash)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("GetParents: expected ErrUnknownBlock, got %+v", err)
	}
	_, err = h.consensus.GetChildren(unknownHash)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("GetChildren: expected ErrUnknownBlock, got %+v", err)
	}
	_, err = h.consensus.IsAncestorOf(h.params.GenesisHash, unknownHash)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("IsAncestorOf: expected ErrUnknownBlock, got %+v", err)
	}
	_, err = h.consensus.DAGSlice(unknownHash, 1)
	if !errors.Is(err, ErrUnknownBlock) {
		t.Fatalf("DAGSlice: expected ErrUnknownBlock, got %+v", err)
	}

	frontier, err := h.consensus.JustificationFrontier([]externalapi.ValidatorID{h.validators[0].ID})
	if err != nil {
		t.Fatalf("JustificationFrontier: %+v", err)
	}
	if len(frontier) != 0 {
		t.Fatalf("Expected a validator without blocks to be omitted from the frontier, got %v", frontier)
	}
}
