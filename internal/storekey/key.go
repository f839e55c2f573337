// Package storekey implements the typed library key used by the content
// store: a (tag, id) pair serialized so that lexicographic byte comparison
// yields the order the store contract requires — all keys of one tag form a
// contiguous range, ascending by id within the range.
package storekey

import (
	"encoding/binary"
	"fmt"
)

// Tag discriminates the two key spaces sharing the store's keyspace.
type Tag byte

const (
	// TagObject addresses a MediaObject record (container or item).
	TagObject Tag = 0
	// TagResource addresses a Resource record.
	TagResource Tag = 1
)

func (t Tag) String() string {
	switch t {
	case TagObject:
		return "object"
	case TagResource:
		return "resource"
	default:
		return fmt.Sprintf("tag(%d)", byte(t))
	}
}

// Key is the length of a serialized LibraryKey: 1 tag byte + 8 id bytes.
const Key = 9

// LibraryKey is a tagged (type, id) pair addressing one store record.
type LibraryKey struct {
	Tag Tag
	ID  int64
}

// Encode serializes the key so that byte-wise comparison sorts by tag first,
// then ascending by id. The id is mapped to an unsigned 64-bit value by
// flipping the sign bit before a big-endian write, which turns signed
// two's-complement ordering into the equivalent unsigned lexicographic order.
func Encode(k LibraryKey) []byte {
	buf := make([]byte, Key)
	EncodeInto(buf, k)
	return buf
}

// EncodeInto writes the serialized key into buf, which must be at least
// Key bytes long.
func EncodeInto(buf []byte, k LibraryKey) {
	buf[0] = byte(k.Tag)
	binary.BigEndian.PutUint64(buf[1:9], toOrdered(k.ID))
}

// Decode parses a serialized key. It fails if buf is not exactly Key bytes.
func Decode(buf []byte) (LibraryKey, error) {
	if len(buf) != Key {
		return LibraryKey{}, fmt.Errorf("storekey: invalid key length %d, want %d", len(buf), Key)
	}
	return LibraryKey{
		Tag: Tag(buf[0]),
		ID:  fromOrdered(binary.BigEndian.Uint64(buf[1:9])),
	}, nil
}

// Prefix returns the first byte of every key of the given tag, for use as an
// iterator prefix.
func Prefix(tag Tag) []byte {
	return []byte{byte(tag)}
}

// MaxKey returns the largest possible serialized key for the given tag —
// the seek target used by Store.NextID's reverse scan.
func MaxKey(tag Tag) []byte {
	buf := make([]byte, Key)
	buf[0] = byte(tag)
	for i := 1; i < Key; i++ {
		buf[i] = 0xFF
	}
	return buf
}

func toOrdered(id int64) uint64 {
	return uint64(id) ^ 0x8000000000000000
}

func fromOrdered(v uint64) int64 {
	return int64(v ^ 0x8000000000000000)
}

// Compare implements the total order required of the key comparator: tag
// first (numerically), then id ascending. It is exposed for property tests;
// Badger's own byte-wise key ordering already enforces this order in
// practice because Encode/Decode are order-preserving, but the explicit
// comparator lets tests assert the order independent of the store engine.
func Compare(a, b LibraryKey) int {
	if a.Tag != b.Tag {
		if a.Tag < b.Tag {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
