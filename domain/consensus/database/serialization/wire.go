package serialization

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are encoded in the protobuf wire format. Field numbers are
// listed next to each record's encoder and must never be reused.

type encoder struct {
	buf []byte
}

func (e *encoder) varint(num protowire.Number, value uint64) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.VarintType)
	e.buf = protowire.AppendVarint(e.buf, value)
}

func (e *encoder) bool(num protowire.Number, value bool) {
	if value {
		e.varint(num, protowire.EncodeBool(value))
	}
}

func (e *encoder) bytes(num protowire.Number, value []byte) {
	e.buf = protowire.AppendTag(e.buf, num, protowire.BytesType)
	e.buf = protowire.AppendBytes(e.buf, value)
}

func (e *encoder) hash(num protowire.Number, hash *externalapi.DomainHash) {
	if hash == nil {
		return
	}
	e.bytes(num, hash.ByteSlice())
}

func (e *encoder) hashes(num protowire.Number, hashes []*externalapi.DomainHash) {
	for _, hash := range hashes {
		e.bytes(num, hash.ByteSlice())
	}
}

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func (f field) hash() (*externalapi.DomainHash, error) {
	if f.typ != protowire.BytesType {
		return nil, errors.Errorf("field %d: expected bytes, got wire type %d", f.num, f.typ)
	}
	return externalapi.NewDomainHashFromByteSlice(f.bytes)
}

func (f field) validatorID() (externalapi.ValidatorID, error) {
	if f.typ != protowire.BytesType {
		return externalapi.ValidatorID{}, errors.Errorf("field %d: expected bytes, got wire type %d", f.num, f.typ)
	}
	return externalapi.NewValidatorIDFromByteSlice(f.bytes)
}

func (f field) copiedBytes() []byte {
	clone := make([]byte, len(f.bytes))
	copy(clone, f.bytes)
	return clone
}

// decodeMessage calls handle for every varint or bytes field in b.
// Fields of other wire types are skipped.
func decodeMessage(b []byte, handle func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.WithStack(protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.WithStack(protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return errors.WithStack(protowire.ParseError(n))
		}
		b = b[n:]

		err := handle(f)
		if err != nil {
			return err
		}
	}
	return nil
}
