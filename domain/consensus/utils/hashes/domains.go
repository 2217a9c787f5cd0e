package hashes

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	blockDomain   = "BlockHash"
	deployDomain  = "DeployID"
	produceDomain = "ProduceKey"
	consumeDomain = "ConsumeKey"
	dataDomain    = "DataHash"
)

func newHashWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewBlockHashWriter returns a new HashWriter used for block hashes
func NewBlockHashWriter() HashWriter {
	return newHashWriter(blockDomain)
}

// NewDeployIDWriter returns a new HashWriter used for deploy IDs
func NewDeployIDWriter() HashWriter {
	return newHashWriter(deployDomain)
}

// NewProduceKeyWriter returns a new HashWriter used for identifying produce events
func NewProduceKeyWriter() HashWriter {
	return newHashWriter(produceDomain)
}

// NewConsumeKeyWriter returns a new HashWriter used for identifying consume events
func NewConsumeKeyWriter() HashWriter {
	return newHashWriter(consumeDomain)
}

// NewDataHashWriter returns a new HashWriter for hashing arbitrary data, such as
// channel names and payloads handed to consensus by collaborators
func NewDataHashWriter() HashWriter {
	return newHashWriter(dataDomain)
}

// HashData hashes data with the data hash domain
func HashData(data []byte) *externalapi.DomainHash {
	writer := NewDataHashWriter()
	writer.InfallibleWrite(data)
	return writer.Finalize()
}
