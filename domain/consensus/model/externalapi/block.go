package externalapi

import "bytes"

// DomainBlock represents a block in the DAG
type DomainBlock struct {
	Header    *DomainBlockHeader
	Deploys   []*DomainDeploy
	Signature []byte
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	deploysClone := make([]*DomainDeploy, len(block.Deploys))
	for i, deploy := range block.Deploys {
		deploysClone[i] = deploy.Clone()
	}
	signatureClone := make([]byte, len(block.Signature))
	copy(signatureClone, block.Signature)

	return &DomainBlock{
		Header:    block.Header.Clone(),
		Deploys:   deploysClone,
		Signature: signatureClone,
	}
}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if len(block.Deploys) != len(other.Deploys) {
		return false
	}
	for i, deploy := range block.Deploys {
		if !deploy.Equal(other.Deploys[i]) {
			return false
		}
	}

	return block.Header.Equal(other.Header) && bytes.Equal(block.Signature, other.Signature)
}

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	// Parents is ordered, the first parent is the block's selected parent
	Parents             []*DomainHash
	Justifications      []*Justification
	Sender              ValidatorID
	SequenceNumber      uint64
	Bonds               []*Bond
	PostStateCommitment *DomainHash
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	justificationsClone := make([]*Justification, len(header.Justifications))
	for i, justification := range header.Justifications {
		justificationsClone[i] = justification.Clone()
	}
	bondsClone := make([]*Bond, len(header.Bonds))
	for i, bond := range header.Bonds {
		bondsClone[i] = bond.Clone()
	}

	return &DomainBlockHeader{
		Parents:             CloneHashes(header.Parents),
		Justifications:      justificationsClone,
		Sender:              header.Sender,
		SequenceNumber:      header.SequenceNumber,
		Bonds:               bondsClone,
		PostStateCommitment: header.PostStateCommitment,
	}
}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	if !HashesEqual(header.Parents, other.Parents) ||
		header.Sender != other.Sender ||
		header.SequenceNumber != other.SequenceNumber ||
		!header.PostStateCommitment.Equal(other.PostStateCommitment) {
		return false
	}

	if len(header.Justifications) != len(other.Justifications) {
		return false
	}
	for i, justification := range header.Justifications {
		otherJustification := other.Justifications[i]
		if justification.Validator != otherJustification.Validator ||
			!justification.Block.Equal(otherJustification.Block) {
			return false
		}
	}

	if len(header.Bonds) != len(other.Bonds) {
		return false
	}
	for i, bond := range header.Bonds {
		if *bond != *other.Bonds[i] {
			return false
		}
	}
	return true
}

// SelectedParent returns the first parent of the header, or nil for genesis
func (header *DomainBlockHeader) SelectedParent() *DomainHash {
	if len(header.Parents) == 0 {
		return nil
	}
	return header.Parents[0]
}

// JustificationOf returns the block the header justifies for validator, if any
func (header *DomainBlockHeader) JustificationOf(validator ValidatorID) (*DomainHash, bool) {
	for _, justification := range header.Justifications {
		if justification.Validator == validator {
			return justification.Block, true
		}
	}
	return nil, false
}

// BlockBundle is a block together with the event logs of its deploys,
// as handed over by the networking layer
type BlockBundle struct {
	Block     *DomainBlock
	EventLogs []EventLog
}
