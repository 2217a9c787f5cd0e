package externalapi

import "bytes"

// DomainDeploy is a single unit of submitted work included in a block.
// The payload is opaque to consensus.
type DomainDeploy struct {
	Sender  []byte
	Payload []byte
}

// Clone returns a clone of DomainDeploy
func (deploy *DomainDeploy) Clone() *DomainDeploy {
	senderClone := make([]byte, len(deploy.Sender))
	copy(senderClone, deploy.Sender)
	payloadClone := make([]byte, len(deploy.Payload))
	copy(payloadClone, deploy.Payload)

	return &DomainDeploy{
		Sender:  senderClone,
		Payload: payloadClone,
	}
}

// Equal returns whether deploy equals to other
func (deploy *DomainDeploy) Equal(other *DomainDeploy) bool {
	if deploy == nil || other == nil {
		return deploy == other
	}
	return bytes.Equal(deploy.Sender, other.Sender) && bytes.Equal(deploy.Payload, other.Payload)
}

// DeployRef addresses the deploy at Index inside block BlockHash.
// The same payload included in two blocks is two different executions,
// so conflicts are tracked per DeployRef rather than per deploy ID.
type DeployRef struct {
	BlockHash DomainHash
	Index     uint32
}

// Less orders DeployRefs by block hash and then by index
func (ref DeployRef) Less(other DeployRef) bool {
	if !ref.BlockHash.Equal(&other.BlockHash) {
		return ref.BlockHash.Less(&other.BlockHash)
	}
	return ref.Index < other.Index
}
