package externalapi

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// ValidatorIDSize is the size of a serialized x-only Schnorr public key
const ValidatorIDSize = 32

// ValidatorID identifies a bonded validator by its Schnorr public key
type ValidatorID [ValidatorIDSize]byte

// NewValidatorIDFromByteSlice constructs a ValidatorID out of a byte slice
func NewValidatorIDFromByteSlice(idBytes []byte) (ValidatorID, error) {
	var id ValidatorID
	if len(idBytes) != ValidatorIDSize {
		return id, errors.Errorf("invalid validator ID size. Want: %d, got: %d",
			ValidatorIDSize, len(idBytes))
	}
	copy(id[:], idBytes)
	return id, nil
}

// NewValidatorIDFromString constructs a ValidatorID out of a hex-encoded string
func NewValidatorIDFromString(idString string) (ValidatorID, error) {
	idBytes, err := hex.DecodeString(idString)
	if err != nil {
		return ValidatorID{}, errors.WithStack(err)
	}
	return NewValidatorIDFromByteSlice(idBytes)
}

func (id ValidatorID) String() string {
	return hex.EncodeToString(id[:])
}

// Less returns true if id is lexicographically smaller than other
func (id ValidatorID) Less(other ValidatorID) bool {
	return bytes.Compare(id[:], other[:]) < 0
}

// Bond is the stake a validator has bonded
type Bond struct {
	Validator ValidatorID
	Stake     uint64
}

// Clone returns a clone of Bond
func (b *Bond) Clone() *Bond {
	return &Bond{Validator: b.Validator, Stake: b.Stake}
}

// Justification points at the latest block the block's sender
// has seen from Validator
type Justification struct {
	Validator ValidatorID
	Block     *DomainHash
}

// Clone returns a clone of Justification
func (j *Justification) Clone() *Justification {
	return &Justification{Validator: j.Validator, Block: j.Block}
}

// BondsToMap converts a bonds list into a validator->stake map
func BondsToMap(bonds []*Bond) map[ValidatorID]uint64 {
	stakes := make(map[ValidatorID]uint64, len(bonds))
	for _, bond := range bonds {
		stakes[bond.Validator] = bond.Stake
	}
	return stakes
}

// TotalStake returns the sum of the stakes in bonds
func TotalStake(bonds []*Bond) uint64 {
	total := uint64(0)
	for _, bond := range bonds {
		total += bond.Stake
	}
	return total
}
