package consensushashing

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

func testBlock() *externalapi.DomainBlock {
	parent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Parents: []*externalapi.DomainHash{parent},
			Justifications: []*externalapi.Justification{
				{Validator: externalapi.ValidatorID{7}, Block: parent},
			},
			Sender:              externalapi.ValidatorID{7},
			SequenceNumber:      2,
			Bonds:               []*externalapi.Bond{{Validator: externalapi.ValidatorID{7}, Stake: 10}},
			PostStateCommitment: externalapi.NewZeroHash(),
		},
		Deploys:   []*externalapi.DomainDeploy{{Sender: []byte{1}, Payload: []byte("payload")}},
		Signature: []byte{1, 2, 3},
	}
}

func TestBlockHashIgnoresSignature(t *testing.T) {
	block := testBlock()
	hashBefore := BlockHash(block)

	block.Signature = []byte{4, 5, 6}
	if !hashBefore.Equal(BlockHash(block)) {
		t.Fatalf("TestBlockHashIgnoresSignature: changing the signature changed the block hash")
	}
}

func TestBlockHashCoversContents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(block *externalapi.DomainBlock)
	}{
		{"sequence number", func(block *externalapi.DomainBlock) { block.Header.SequenceNumber++ }},
		{"sender", func(block *externalapi.DomainBlock) { block.Header.Sender[0]++ }},
		{"bond stake", func(block *externalapi.DomainBlock) { block.Header.Bonds[0].Stake++ }},
		{"deploy payload", func(block *externalapi.DomainBlock) { block.Deploys[0].Payload = []byte("other") }},
		{"post-state", func(block *externalapi.DomainBlock) {
			block.Header.PostStateCommitment = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{9})
		}},
		{"extra parent", func(block *externalapi.DomainBlock) {
			block.Header.Parents = append(block.Header.Parents, externalapi.NewZeroHash())
		}},
	}

	original := BlockHash(testBlock())
	for _, test := range tests {
		block := testBlock()
		test.mutate(block)
		if original.Equal(BlockHash(block)) {
			t.Fatalf("TestBlockHashCoversContents: changing the %s did not change the block hash", test.name)
		}
	}
}

func TestEventKeys(t *testing.T) {
	channel := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	data := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	persistent := ProduceKey(&externalapi.Produce{Channel: channel, DataHash: data, Persistent: true})
	ephemeral := ProduceKey(&externalapi.Produce{Channel: channel, DataHash: data, Persistent: false})
	if persistent == ephemeral {
		t.Fatalf("TestEventKeys: persistence is not part of the produce key")
	}

	consumeA := ConsumeKey(&externalapi.Consume{Channels: []*externalapi.DomainHash{channel}, PatternHash: data})
	consumeB := ConsumeKey(&externalapi.Consume{Channels: []*externalapi.DomainHash{channel}, PatternHash: data})
	if consumeA != consumeB {
		t.Fatalf("TestEventKeys: equal consumes produced different keys")
	}
}
