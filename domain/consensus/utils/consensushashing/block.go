package consensushashing

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

// BlockHash returns the given block's hash. The signature is not part of the
// hash: it signs the hash.
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	writeHeader(writer, block.Header)

	writeUint64(writer, uint64(len(block.Deploys)))
	for _, deploy := range block.Deploys {
		writeHash(writer, DeployID(deploy))
	}
	return writer.Finalize()
}

func writeHeader(w hashes.HashWriter, header *externalapi.DomainBlockHeader) {
	writeHashes(w, header.Parents)

	writeUint64(w, uint64(len(header.Justifications)))
	for _, justification := range header.Justifications {
		w.InfallibleWrite(justification.Validator[:])
		writeHash(w, justification.Block)
	}

	w.InfallibleWrite(header.Sender[:])
	writeUint64(w, header.SequenceNumber)

	writeUint64(w, uint64(len(header.Bonds)))
	for _, bond := range header.Bonds {
		w.InfallibleWrite(bond.Validator[:])
		writeUint64(w, bond.Stake)
	}

	writeHash(w, header.PostStateCommitment)
}

// DeployID returns the identifier of the given deploy
func DeployID(deploy *externalapi.DomainDeploy) *externalapi.DomainHash {
	writer := hashes.NewDeployIDWriter()
	writeVarBytes(writer, deploy.Sender)
	writeVarBytes(writer, deploy.Payload)
	return writer.Finalize()
}
