// Package blocksig signs and verifies block signatures. A block is signed by
// its sender with a Schnorr signature over the block hash; the sender's
// ValidatorID is the x-only public key.
package blocksig

import (
	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// ValidatorIDFromKeyPair returns the ValidatorID of the given key pair
func ValidatorIDFromKeyPair(keyPair *secp256k1.SchnorrKeyPair) (externalapi.ValidatorID, error) {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return externalapi.ValidatorID{}, err
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return externalapi.ValidatorID{}, err
	}
	return externalapi.NewValidatorIDFromByteSlice(serializedPublicKey[:])
}

// Sign sets the signature of block, which must already carry its final contents
func Sign(block *externalapi.DomainBlock, keyPair *secp256k1.SchnorrKeyPair) error {
	blockHash := consensushashing.BlockHash(block)
	secpHash := secp256k1.Hash(*blockHash.ByteArray())
	signature, err := keyPair.SchnorrSign(&secpHash)
	if err != nil {
		return errors.Errorf("cannot sign block %s: %s", blockHash, err)
	}
	block.Signature = signature.Serialize()[:]
	return nil
}

// Verify returns whether block's signature was made by block's sender over blockHash
func Verify(blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) bool {
	publicKey, err := secp256k1.DeserializeSchnorrPubKey(block.Header.Sender[:])
	if err != nil {
		return false
	}
	signature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(block.Signature)
	if err != nil {
		return false
	}
	secpHash := secp256k1.Hash(*blockHash.ByteArray())
	return publicKey.SchnorrVerify(&secpHash, signature)
}
