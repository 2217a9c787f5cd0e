package dagconfig

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/consensushashing"
)

// The devnet validators are the x-only public keys of the private keys 1, 2
// and 3. They are meant for local development only.
var devnetGenesisBonds = []*externalapi.Bond{
	{Validator: mustValidatorID("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"), Stake: 100},
	{Validator: mustValidatorID("c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"), Stake: 100},
	{Validator: mustValidatorID("f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"), Stake: 100},
}

var devnetGenesisBlock = NewGenesisBlock(devnetGenesisBonds)

var devnetGenesisHash = consensushashing.BlockHash(devnetGenesisBlock)

var simnetGenesisBonds = []*externalapi.Bond{
	{Validator: mustValidatorID("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"), Stake: 1},
}

var simnetGenesisBlock = NewGenesisBlock(simnetGenesisBonds)

var simnetGenesisHash = consensushashing.BlockHash(simnetGenesisBlock)

// NewGenesisBlock returns an unsigned, parentless block carrying bonds and
// committing to the empty state
func NewGenesisBlock(bonds []*externalapi.Bond) *externalapi.DomainBlock {
	bondsClone := make([]*externalapi.Bond, len(bonds))
	for i, bond := range bonds {
		bondsClone[i] = bond.Clone()
	}
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Parents:             []*externalapi.DomainHash{},
			Justifications:      []*externalapi.Justification{},
			Bonds:               bondsClone,
			PostStateCommitment: externalapi.NewZeroHash(),
		},
		Deploys: []*externalapi.DomainDeploy{},
	}
}

func mustValidatorID(hexString string) externalapi.ValidatorID {
	id, err := externalapi.NewValidatorIDFromString(hexString)
	if err != nil {
		panic(err)
	}
	return id
}
