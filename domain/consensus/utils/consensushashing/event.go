package consensushashing

import (
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

// ProduceKey identifies a produced datum. Two produce events with the same
// channel, data and persistence are indistinguishable.
func ProduceKey(produce *externalapi.Produce) externalapi.DomainHash {
	writer := hashes.NewProduceKeyWriter()
	writeHash(writer, produce.Channel)
	writeHash(writer, produce.DataHash)
	writeBool(writer, produce.Persistent)
	return *writer.Finalize()
}

// ConsumeKey identifies a continuation by its channels, pattern and persistence
func ConsumeKey(consume *externalapi.Consume) externalapi.DomainHash {
	writer := hashes.NewConsumeKeyWriter()
	writeHashes(writer, consume.Channels)
	writeHash(writer, consume.PatternHash)
	writeBool(writer, consume.Persistent)
	return *writer.Finalize()
}
