package badger

import (
	"encoding/binary"

	"github.com/poiesic/clinquery/core"
)

// Key prefixes for different data types
const (
	graphSnapshotPrefix = "grsnap"
)

// makeGraphSnapshotKey generates a key for a graph snapshot by dataset hash.
func makeGraphSnapshotKey(hash core.ID) []byte {
	prefix := graphSnapshotPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(hash))
	return buf
}

// graphSnapshotKeyPrefix returns the prefix shared by all snapshot keys,
// used to sweep stale snapshots.
func graphSnapshotKeyPrefix() []byte {
	return []byte(graphSnapshotPrefix + ":")
}
