package consensushashing

import (
	"encoding/binary"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

func writeUint64(w hashes.HashWriter, value uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	w.InfallibleWrite(buf[:])
}

func writeBool(w hashes.HashWriter, value bool) {
	if value {
		w.InfallibleWrite([]byte{1})
		return
	}
	w.InfallibleWrite([]byte{0})
}

func writeVarBytes(w hashes.HashWriter, data []byte) {
	writeUint64(w, uint64(len(data)))
	w.InfallibleWrite(data)
}

// writeHash writes a hash, using the zero hash for nil
func writeHash(w hashes.HashWriter, hash *externalapi.DomainHash) {
	if hash == nil {
		hash = externalapi.NewZeroHash()
	}
	w.InfallibleWrite(hash.ByteSlice())
}

func writeHashes(w hashes.HashWriter, hashList []*externalapi.DomainHash) {
	writeUint64(w, uint64(len(hashList)))
	for _, hash := range hashList {
		writeHash(w, hash)
	}
}
