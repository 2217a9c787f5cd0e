package statestore

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Op is a single tuplespace operation of a deploy payload
type Op struct {
	// IsSend marks a send. Otherwise the op is a receive.
	IsSend     bool
	Channel    []byte
	Value      []byte
	Persistent bool
}

func (op *Op) tuple() tuple {
	kind := continuationTuple
	if op.IsSend {
		kind = datumTuple
	}
	return tuple{
		kind:       kind,
		channel:    *hashes.HashData(op.Channel),
		value:      *hashes.HashData(op.Value),
		persistent: op.Persistent,
	}
}

// Send returns a send of value on channel
func Send(channel, value string, persistent bool) Op {
	return Op{IsSend: true, Channel: []byte(channel), Value: []byte(value), Persistent: persistent}
}

// Receive returns a receive on channel with the given pattern
func Receive(channel, pattern string, persistent bool) Op {
	return Op{IsSend: false, Channel: []byte(channel), Value: []byte(pattern), Persistent: persistent}
}

const (
	payloadOpField      protowire.Number = 1
	opIsSendField       protowire.Number = 1
	opChannelField      protowire.Number = 2
	opValueField        protowire.Number = 3
	opIsPersistentField protowire.Number = 4
)

// EncodePayload encodes ops into a deploy payload
func EncodePayload(ops ...Op) []byte {
	var payload []byte
	for _, op := range ops {
		var opBytes []byte
		if op.IsSend {
			opBytes = protowire.AppendTag(opBytes, opIsSendField, protowire.VarintType)
			opBytes = protowire.AppendVarint(opBytes, 1)
		}
		opBytes = protowire.AppendTag(opBytes, opChannelField, protowire.BytesType)
		opBytes = protowire.AppendBytes(opBytes, op.Channel)
		opBytes = protowire.AppendTag(opBytes, opValueField, protowire.BytesType)
		opBytes = protowire.AppendBytes(opBytes, op.Value)
		if op.Persistent {
			opBytes = protowire.AppendTag(opBytes, opIsPersistentField, protowire.VarintType)
			opBytes = protowire.AppendVarint(opBytes, 1)
		}

		payload = protowire.AppendTag(payload, payloadOpField, protowire.BytesType)
		payload = protowire.AppendBytes(payload, opBytes)
	}
	return payload
}

// DecodePayload decodes a deploy payload created by EncodePayload
func DecodePayload(payload []byte) ([]Op, error) {
	var ops []Op
	err := forEachField(payload, func(num protowire.Number, varint uint64, bytes []byte) error {
		if num != payloadOpField || bytes == nil {
			return errors.Errorf("unexpected payload field %d", num)
		}
		op := Op{}
		err := forEachField(bytes, func(num protowire.Number, varint uint64, bytes []byte) error {
			switch num {
			case opIsSendField:
				op.IsSend = protowire.DecodeBool(varint)
			case opChannelField:
				op.Channel = append([]byte{}, bytes...)
			case opValueField:
				op.Value = append([]byte{}, bytes...)
			case opIsPersistentField:
				op.Persistent = protowire.DecodeBool(varint)
			default:
				return errors.Errorf("unexpected op field %d", num)
			}
			return nil
		})
		if err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ops, nil
}

func forEachField(b []byte, handle func(num protowire.Number, varint uint64, bytes []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.WithStack(protowire.ParseError(n))
		}
		b = b[n:]

		var varint uint64
		var bytes []byte
		switch typ {
		case protowire.VarintType:
			varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			bytes, n = protowire.ConsumeBytes(b)
			if bytes == nil {
				bytes = []byte{}
			}
		default:
			return errors.Errorf("field %d has unsupported wire type %d", num, typ)
		}
		if n < 0 {
			return errors.WithStack(protowire.ParseError(n))
		}
		b = b[n:]

		err := handle(num, varint, bytes)
		if err != nil {
			return err
		}
	}
	return nil
}

// Executor runs deploy payloads against the states of a StateStore. A send
// is received by the smallest continuation waiting on its channel, and a
// receive takes the smallest datum on its channel. Unmatched sends and
// receives are stored, as are persistent ones.
type Executor struct {
	store *StateStore
}

// NewExecutor returns an Executor over the states of store
func NewExecutor(store *StateStore) *Executor {
	return &Executor{store: store}
}

// ExecuteAndTrace runs the ops of deployPayload on top of preState and
// returns their event log and the commitment of the resulting state
func (e *Executor) ExecuteAndTrace(deployPayload []byte, preState externalapi.StateHandle) (
	externalapi.EventLog, *externalapi.DomainHash, error) {

	h, err := e.store.ownHandle(preState)
	if err != nil {
		return nil, nil, err
	}
	ops, err := DecodePayload(deployPayload)
	if err != nil {
		return nil, nil, err
	}

	tuples := h.tuples.clone()
	eventLog := externalapi.EventLog{}
	for _, op := range ops {
		entry := op.tuple()
		if op.IsSend {
			eventLog = append(eventLog, entry.produce())
			eventLog, err = send(tuples, entry, eventLog)
		} else {
			eventLog = append(eventLog, entry.consume())
			eventLog, err = receive(tuples, entry, eventLog)
		}
		if err != nil {
			return nil, nil, err
		}
	}

	post := &stateHandle{store: e.store, origin: h.origin, tuples: tuples}
	commitment, err := post.Commitment()
	if err != nil {
		return nil, nil, err
	}
	return eventLog, commitment, nil
}

func send(tuples tupleCollection, datum tuple, eventLog externalapi.EventLog) (externalapi.EventLog, error) {
	continuation, ok := tuples.smallestOn(continuationTuple, &datum.channel)
	if !ok {
		tuples.add(datum, 1)
		return eventLog, nil
	}

	eventLog = append(eventLog, &externalapi.Comm{
		Consume:  continuation.consume(),
		Produces: []*externalapi.Produce{datum.produce()},
	})
	if !continuation.persistent {
		err := tuples.remove(continuation, 1)
		if err != nil {
			return nil, err
		}
	}
	if datum.persistent {
		tuples.add(datum, 1)
	}
	return eventLog, nil
}

func receive(tuples tupleCollection, continuation tuple, eventLog externalapi.EventLog) (externalapi.EventLog, error) {
	datum, ok := tuples.smallestOn(datumTuple, &continuation.channel)
	if !ok {
		tuples.add(continuation, 1)
		return eventLog, nil
	}

	eventLog = append(eventLog, &externalapi.Comm{
		Consume:  continuation.consume(),
		Produces: []*externalapi.Produce{datum.produce()},
	})
	if !datum.persistent {
		err := tuples.remove(datum, 1)
		if err != nil {
			return nil, err
		}
	}
	if continuation.persistent {
		tuples.add(continuation, 1)
	}
	return eventLog, nil
}
