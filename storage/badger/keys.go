package badger

import (
	"github.com/poiesic/banktalk/core"
)

// Key prefixes for different data types
const (
	collectionPrefix = "col:"
	pointPrefix      = "pt:"

	// keySeparator ends the collection name inside point keys so that
	// collection "a" never matches the points of collection "ab".
	keySeparator = "\x00"
)

// makeCollectionKey generates the key holding a collection's configuration.
func makeCollectionKey(name string) []byte {
	return []byte(collectionPrefix + name)
}

// makePointPrefix generates the prefix shared by every point of a collection.
// Format: prefix:name\x00
func makePointPrefix(collection string) []byte {
	return []byte(pointPrefix + collection + keySeparator)
}

// makePointKey generates a key for a point by ID.
// Format: prefix:name\x00id
func makePointKey(collection string, id core.PointID) []byte {
	return append(makePointPrefix(collection), id.String()...)
}
