package blocksig

import (
	"testing"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
)

func TestSignAndVerify(t *testing.T) {
	privateKeyBytes := make([]byte, 32)
	privateKeyBytes[31] = 1
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes)
	if err != nil {
		t.Fatalf("TestSignAndVerify: DeserializeSchnorrPrivateKeyFromSlice: %s", err)
	}
	sender, err := ValidatorIDFromKeyPair(keyPair)
	if err != nil {
		t.Fatalf("TestSignAndVerify: ValidatorIDFromKeyPair: %s", err)
	}

	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Parents:             []*externalapi.DomainHash{externalapi.NewZeroHash()},
			Sender:              sender,
			SequenceNumber:      1,
			PostStateCommitment: externalapi.NewZeroHash(),
		},
	}
	err = Sign(block, keyPair)
	if err != nil {
		t.Fatalf("TestSignAndVerify: Sign: %s", err)
	}

	if !Verify(consensushashing.BlockHash(block), block) {
		t.Fatalf("TestSignAndVerify: a freshly signed block does not verify")
	}

	block.Header.SequenceNumber++
	if Verify(consensushashing.BlockHash(block), block) {
		t.Fatalf("TestSignAndVerify: the signature verified after the block was modified")
	}

	block.Header.SequenceNumber--
	block.Header.Sender = externalapi.ValidatorID{}
	if Verify(consensushashing.BlockHash(block), block) {
		t.Fatalf("TestSignAndVerify: the signature verified for a different sender")
	}
}
