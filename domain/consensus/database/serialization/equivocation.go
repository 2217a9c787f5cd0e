package serialization

import (
	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// equivocations: 1 equivocation
// equivocation: 1 sequence number, 2 blocks

// SerializeEquivocations encodes the equivocation evidence of a validator
func SerializeEquivocations(equivocations []*model.Equivocation) []byte {
	e := &encoder{}
	for _, equivocation := range equivocations {
		inner := &encoder{}
		inner.varint(1, equivocation.SequenceNumber)
		inner.hashes(2, equivocation.Blocks)
		e.bytes(1, inner.buf)
	}
	return e.buf
}

// DeserializeEquivocations decodes evidence encoded by SerializeEquivocations
func DeserializeEquivocations(equivocationsBytes []byte) ([]*model.Equivocation, error) {
	equivocations := []*model.Equivocation{}
	err := decodeMessage(equivocationsBytes, func(f field) error {
		if f.num != 1 {
			return nil
		}
		if f.typ != protowire.BytesType {
			return errors.Errorf("field %d: expected bytes, got wire type %d", f.num, f.typ)
		}
		equivocation, err := deserializeEquivocation(f.bytes)
		if err != nil {
			return err
		}
		equivocations = append(equivocations, equivocation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return equivocations, nil
}

func deserializeEquivocation(equivocationBytes []byte) (*model.Equivocation, error) {
	equivocation := &model.Equivocation{}
	err := decodeMessage(equivocationBytes, func(f field) error {
		switch f.num {
		case 1:
			equivocation.SequenceNumber = f.varint
		case 2:
			hash, err := f.hash()
			if err != nil {
				return err
			}
			equivocation.Blocks = append(equivocation.Blocks, hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(equivocation.Blocks) < 2 {
		return nil, errors.Errorf("equivocation at sequence number %d names %d blocks, expected at least 2",
			equivocation.SequenceNumber, len(equivocation.Blocks))
	}
	return equivocation, nil
}
