// Package testutils builds validators, networks and signed blocks for tests
package testutils

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/kaspanet/go-secp256k1"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/blocksig"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
	"github.com/kaspanet/mergedag/domain/dagconfig"
	"github.com/pkg/errors"
)

const privateKeySize = 32

// Validator is a test validator together with its signing key
type Validator struct {
	ID      externalapi.ValidatorID
	keyPair *secp256k1.SchnorrKeyPair
}

// NewValidators returns count validators ordered by ID. Their private keys
// are the integers 1 to count, so every call returns the same validators.
func NewValidators(count int) ([]*Validator, error) {
	validators := make([]*Validator, count)
	for i := range validators {
		privateKey := make([]byte, privateKeySize)
		binary.BigEndian.PutUint64(privateKey[len(privateKey)-8:], uint64(i+1))
		keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create the key of validator #%d", i)
		}
		id, err := blocksig.ValidatorIDFromKeyPair(keyPair)
		if err != nil {
			return nil, err
		}
		validators[i] = &Validator{ID: id, keyPair: keyPair}
	}

	sort.Slice(validators, func(i, j int) bool {
		return validators[i].ID.Less(validators[j].ID)
	})
	return validators, nil
}

// Sign signs block with the validator's key
func (v *Validator) Sign(block *externalapi.DomainBlock) error {
	return blocksig.Sign(block, v.keyPair)
}

// NewTestParams returns a copy of base whose genesis bonds each of the
// given validators with stake
func NewTestParams(base *dagconfig.Params, validators []*Validator, stake uint64) *dagconfig.Params {
	bonds := make([]*externalapi.Bond, len(validators))
	for i, validator := range validators {
		bonds[i] = &externalapi.Bond{Validator: validator.ID, Stake: stake}
	}
	sort.Slice(bonds, func(i, j int) bool {
		return bonds[i].Validator.Less(bonds[j].Validator)
	})

	params := *base
	params.Name = fmt.Sprintf("%s-%d-validators", base.Name, len(validators))
	params.GenesisBlock = dagconfig.NewGenesisBlock(bonds)
	params.GenesisHash = consensushashing.BlockHash(params.GenesisBlock)
	return &params
}
