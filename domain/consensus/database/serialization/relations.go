package serialization

import (
	"encoding/binary"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// block relations: 1 parents, 2 children

// SerializeBlockRelations encodes BlockRelations
func SerializeBlockRelations(relations *model.BlockRelations) []byte {
	e := &encoder{}
	e.hashes(1, relations.Parents)
	e.hashes(2, relations.Children)
	return e.buf
}

// DeserializeBlockRelations decodes BlockRelations
func DeserializeBlockRelations(relationsBytes []byte) (*model.BlockRelations, error) {
	relations := &model.BlockRelations{}
	err := decodeMessage(relationsBytes, func(f field) error {
		hash, err := f.hash()
		if err != nil {
			return err
		}
		switch f.num {
		case 1:
			relations.Parents = append(relations.Parents, hash)
		case 2:
			relations.Children = append(relations.Children, hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return relations, nil
}

// reachability data: 1 tree parent, 2 depth, 3 height, 4 skip pointers, 5 future covering set

// SerializeReachabilityData encodes ReachabilityData
func SerializeReachabilityData(data *model.ReachabilityData) []byte {
	e := &encoder{}
	e.hash(1, data.TreeParent)
	e.varint(2, data.Depth)
	e.varint(3, data.Height)
	e.hashes(4, data.SkipPointers)
	e.hashes(5, data.FutureCoveringSet)
	return e.buf
}

// DeserializeReachabilityData decodes ReachabilityData
func DeserializeReachabilityData(dataBytes []byte) (*model.ReachabilityData, error) {
	data := &model.ReachabilityData{}
	err := decodeMessage(dataBytes, func(f field) error {
		switch f.num {
		case 2:
			data.Depth = f.varint
			return nil
		case 3:
			data.Height = f.varint
			return nil
		}

		hash, err := f.hash()
		if err != nil {
			return err
		}
		switch f.num {
		case 1:
			data.TreeParent = hash
		case 4:
			data.SkipPointers = append(data.SkipPointers, hash)
		case 5:
			data.FutureCoveringSet = append(data.FutureCoveringSet, hash)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// hash list: 1 hashes

// SerializeHashes encodes a list of hashes
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	e := &encoder{}
	e.hashes(1, hashes)
	return e.buf
}

// DeserializeHashes decodes a list of hashes
func DeserializeHashes(hashesBytes []byte) ([]*externalapi.DomainHash, error) {
	hashes := []*externalapi.DomainHash{}
	err := decodeMessage(hashesBytes, func(f field) error {
		if f.num != 1 {
			return nil
		}
		hash, err := f.hash()
		if err != nil {
			return err
		}
		hashes = append(hashes, hash)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// SerializeHash encodes a single hash as its raw bytes
func SerializeHash(hash *externalapi.DomainHash) []byte {
	return hash.ByteSlice()
}

// DeserializeHash decodes a hash encoded by SerializeHash
func DeserializeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// SerializeBlockStatus encodes a BlockStatus
func SerializeBlockStatus(status externalapi.BlockStatus) []byte {
	return []byte{byte(status)}
}

// DeserializeBlockStatus decodes a BlockStatus
func DeserializeBlockStatus(statusBytes []byte) (externalapi.BlockStatus, error) {
	if len(statusBytes) != 1 {
		return 0, errors.Errorf("serialized block status is %d bytes, expected 1", len(statusBytes))
	}
	return externalapi.BlockStatus(statusBytes[0]), nil
}

// Uint64Key encodes value in big endian so that keys sort numerically
func Uint64Key(value uint64) []byte {
	var keyBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], value)
	return keyBytes[:]
}

// DeserializeUint64Key decodes a key encoded by Uint64Key
func DeserializeUint64Key(keyBytes []byte) (uint64, error) {
	if len(keyBytes) != 8 {
		return 0, errors.Errorf("uint64 key is %d bytes, expected 8", len(keyBytes))
	}
	return binary.BigEndian.Uint64(keyBytes), nil
}
