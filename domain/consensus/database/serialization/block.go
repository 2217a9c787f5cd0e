package serialization

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// block: 1 header, 2 deploys, 3 signature
// header: 1 parents, 2 justifications, 3 sender, 4 sequence number, 5 bonds, 6 post-state
// justification: 1 validator, 2 block
// bond: 1 validator, 2 stake
// deploy: 1 sender, 2 payload

// SerializeBlock encodes a DomainBlock
func SerializeBlock(block *externalapi.DomainBlock) []byte {
	e := &encoder{}
	e.bytes(1, serializeHeader(block.Header))
	for _, deploy := range block.Deploys {
		e.bytes(2, serializeDeploy(deploy))
	}
	e.bytes(3, block.Signature)
	return e.buf
}

func serializeHeader(header *externalapi.DomainBlockHeader) []byte {
	e := &encoder{}
	e.hashes(1, header.Parents)
	for _, justification := range header.Justifications {
		je := &encoder{}
		je.bytes(1, justification.Validator[:])
		je.hash(2, justification.Block)
		e.bytes(2, je.buf)
	}
	e.bytes(3, header.Sender[:])
	e.varint(4, header.SequenceNumber)
	for _, bond := range header.Bonds {
		be := &encoder{}
		be.bytes(1, bond.Validator[:])
		be.varint(2, bond.Stake)
		e.bytes(5, be.buf)
	}
	e.hash(6, header.PostStateCommitment)
	return e.buf
}

func serializeDeploy(deploy *externalapi.DomainDeploy) []byte {
	e := &encoder{}
	e.bytes(1, deploy.Sender)
	e.bytes(2, deploy.Payload)
	return e.buf
}

// DeserializeBlock decodes a DomainBlock encoded by SerializeBlock
func DeserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	block := &externalapi.DomainBlock{}
	err := decodeMessage(blockBytes, func(f field) error {
		switch f.num {
		case 1:
			header, err := deserializeHeader(f.bytes)
			if err != nil {
				return err
			}
			block.Header = header
		case 2:
			deploy, err := deserializeDeploy(f.bytes)
			if err != nil {
				return err
			}
			block.Deploys = append(block.Deploys, deploy)
		case 3:
			block.Signature = f.copiedBytes()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if block.Header == nil {
		return nil, errors.New("serialized block is missing its header")
	}
	return block, nil
}

func deserializeHeader(headerBytes []byte) (*externalapi.DomainBlockHeader, error) {
	header := &externalapi.DomainBlockHeader{}
	err := decodeMessage(headerBytes, func(f field) error {
		switch f.num {
		case 1:
			parent, err := f.hash()
			if err != nil {
				return err
			}
			header.Parents = append(header.Parents, parent)
		case 2:
			justification, err := deserializeJustification(f.bytes)
			if err != nil {
				return err
			}
			header.Justifications = append(header.Justifications, justification)
		case 3:
			sender, err := f.validatorID()
			if err != nil {
				return err
			}
			header.Sender = sender
		case 4:
			header.SequenceNumber = f.varint
		case 5:
			bond, err := deserializeBond(f.bytes)
			if err != nil {
				return err
			}
			header.Bonds = append(header.Bonds, bond)
		case 6:
			postState, err := f.hash()
			if err != nil {
				return err
			}
			header.PostStateCommitment = postState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return header, nil
}

func deserializeJustification(justificationBytes []byte) (*externalapi.Justification, error) {
	justification := &externalapi.Justification{}
	err := decodeMessage(justificationBytes, func(f field) error {
		var err error
		switch f.num {
		case 1:
			justification.Validator, err = f.validatorID()
		case 2:
			justification.Block, err = f.hash()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if justification.Block == nil {
		return nil, errors.New("serialized justification is missing its block")
	}
	return justification, nil
}

func deserializeBond(bondBytes []byte) (*externalapi.Bond, error) {
	bond := &externalapi.Bond{}
	err := decodeMessage(bondBytes, func(f field) error {
		var err error
		switch f.num {
		case 1:
			bond.Validator, err = f.validatorID()
		case 2:
			bond.Stake = f.varint
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return bond, nil
}

func deserializeDeploy(deployBytes []byte) (*externalapi.DomainDeploy, error) {
	deploy := &externalapi.DomainDeploy{Sender: []byte{}, Payload: []byte{}}
	err := decodeMessage(deployBytes, func(f field) error {
		switch f.num {
		case 1:
			deploy.Sender = f.copiedBytes()
		case 2:
			deploy.Payload = f.copiedBytes()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deploy, nil
}

// block counts: 1 blocks, 2 deploys

// SerializeBlockCounts encodes the number of stored blocks and deploys
func SerializeBlockCounts(blocks, deploys uint64) []byte {
	e := &encoder{}
	e.varint(1, blocks)
	e.varint(2, deploys)
	return e.buf
}

// DeserializeBlockCounts decodes counts encoded by SerializeBlockCounts
func DeserializeBlockCounts(countsBytes []byte) (blocks, deploys uint64, err error) {
	err = decodeMessage(countsBytes, func(f field) error {
		if f.typ != protowire.VarintType {
			return errors.Errorf("field %d: expected varint, got wire type %d", f.num, f.typ)
		}
		switch f.num {
		case 1:
			blocks = f.varint
		case 2:
			deploys = f.varint
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return blocks, deploys, nil
}
