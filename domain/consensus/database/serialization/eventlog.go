package serialization

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// event logs: 1 log (repeated)
// log: 1 event (repeated)
// event: exactly one of 1 produce, 2 consume, 3 comm
// produce: 1 channel, 2 data hash, 3 persistent
// consume: 1 channels, 2 pattern hash, 3 persistent
// comm: 1 consume, 2 produces

// SerializeEventLogs encodes the event logs of a block's deploys
func SerializeEventLogs(eventLogs []externalapi.EventLog) []byte {
	e := &encoder{}
	for _, eventLog := range eventLogs {
		le := &encoder{}
		for _, event := range eventLog {
			le.bytes(1, serializeEvent(event))
		}
		e.bytes(1, le.buf)
	}
	return e.buf
}

func serializeEvent(event externalapi.Event) []byte {
	e := &encoder{}
	switch event := event.(type) {
	case *externalapi.Produce:
		e.bytes(1, serializeProduce(event))
	case *externalapi.Consume:
		e.bytes(2, serializeConsume(event))
	case *externalapi.Comm:
		ce := &encoder{}
		ce.bytes(1, serializeConsume(event.Consume))
		for _, produce := range event.Produces {
			ce.bytes(2, serializeProduce(produce))
		}
		e.bytes(3, ce.buf)
	default:
		panic(errors.Errorf("unexpected event type %T", event))
	}
	return e.buf
}

func serializeProduce(produce *externalapi.Produce) []byte {
	e := &encoder{}
	e.hash(1, produce.Channel)
	e.hash(2, produce.DataHash)
	e.bool(3, produce.Persistent)
	return e.buf
}

func serializeConsume(consume *externalapi.Consume) []byte {
	e := &encoder{}
	e.hashes(1, consume.Channels)
	e.hash(2, consume.PatternHash)
	e.bool(3, consume.Persistent)
	return e.buf
}

// DeserializeEventLogs decodes event logs encoded by SerializeEventLogs
func DeserializeEventLogs(eventLogsBytes []byte) ([]externalapi.EventLog, error) {
	eventLogs := []externalapi.EventLog{}
	err := decodeMessage(eventLogsBytes, func(f field) error {
		if f.num != 1 {
			return nil
		}
		eventLog := externalapi.EventLog{}
		err := decodeMessage(f.bytes, func(ef field) error {
			if ef.num != 1 {
				return nil
			}
			event, err := deserializeEvent(ef.bytes)
			if err != nil {
				return err
			}
			eventLog = append(eventLog, event)
			return nil
		})
		if err != nil {
			return err
		}
		eventLogs = append(eventLogs, eventLog)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return eventLogs, nil
}

func deserializeEvent(eventBytes []byte) (externalapi.Event, error) {
	var event externalapi.Event
	err := decodeMessage(eventBytes, func(f field) error {
		if event != nil {
			return errors.New("serialized event holds more than one kind")
		}
		var err error
		switch f.num {
		case 1:
			event, err = deserializeProduce(f.bytes)
		case 2:
			event, err = deserializeConsume(f.bytes)
		case 3:
			event, err = deserializeComm(f.bytes)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errors.New("serialized event is empty")
	}
	return event, nil
}

func deserializeProduce(produceBytes []byte) (*externalapi.Produce, error) {
	produce := &externalapi.Produce{}
	err := decodeMessage(produceBytes, func(f field) error {
		var err error
		switch f.num {
		case 1:
			produce.Channel, err = f.hash()
		case 2:
			produce.DataHash, err = f.hash()
		case 3:
			produce.Persistent = protowire.DecodeBool(f.varint)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if produce.Channel == nil || produce.DataHash == nil {
		return nil, errors.New("serialized produce is missing its channel or data")
	}
	return produce, nil
}

func deserializeConsume(consumeBytes []byte) (*externalapi.Consume, error) {
	consume := &externalapi.Consume{}
	err := decodeMessage(consumeBytes, func(f field) error {
		switch f.num {
		case 1:
			channel, err := f.hash()
			if err != nil {
				return err
			}
			consume.Channels = append(consume.Channels, channel)
		case 2:
			pattern, err := f.hash()
			if err != nil {
				return err
			}
			consume.PatternHash = pattern
		case 3:
			consume.Persistent = protowire.DecodeBool(f.varint)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(consume.Channels) == 0 || consume.PatternHash == nil {
		return nil, errors.New("serialized consume is missing its channels or pattern")
	}
	return consume, nil
}

func deserializeComm(commBytes []byte) (*externalapi.Comm, error) {
	comm := &externalapi.Comm{}
	err := decodeMessage(commBytes, func(f field) error {
		switch f.num {
		case 1:
			consume, err := deserializeConsume(f.bytes)
			if err != nil {
				return err
			}
			comm.Consume = consume
		case 2:
			produce, err := deserializeProduce(f.bytes)
			if err != nil {
				return err
			}
			comm.Produces = append(comm.Produces, produce)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if comm.Consume == nil {
		return nil, errors.New("serialized comm is missing its consume")
	}
	return comm, nil
}
