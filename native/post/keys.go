package post

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Storage key layout. Node ids are decimal strings externally but encoded as
// fixed-width big-endian u64 inside keys so byte order equals numeric order
// (plain string keys would sort "10" before "2"). The empty parent id of the
// root encodes as 0, which is never assigned to a node. Variable-length
// components (tags, addresses) are length-prefixed so composite keys can
// never collide across component boundaries.
const (
	keyOperator  = "g/op"
	keyConfig    = "g/config"
	keyCreatedAt = "g/created_at"
	keyCreatedBy = "g/created_by"
	keyRoyalties = "g/royalties"

	counterPrefix = "c/"

	headerPrefix        = "n/h/"
	attrsPrefix         = "n/a/"
	statusPrefix        = "n/s/"
	tagsPrefix          = "n/t/"
	updatedAtPrefix     = "n/u/"
	repliesPrefix       = "n/r/"
	reactionsPrefix     = "n/c/"
	likesPrefix         = "n/l/"
	nodeRoyaltiesPrefix = "n/y/"
	reactionEntryPrefix = "n/x/"

	ixParentChildPrefix = "i/pc/"
	ixParentRankPrefix  = "i/pr/"
	ixTagRankPrefix     = "i/tn/"
	ixAddrLikedPrefix   = "i/al/"
	ixLikedAddrPrefix   = "i/la/"
)

// Counter names.
const (
	counterNodeID   = "node_id"
	counterNumNodes = "num_nodes"
)

func encodeNodeID(id string) ([]byte, error) {
	var n uint64
	if id != "" {
		parsed, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: node id %q", ErrInvalidInput, id)
		}
		n = parsed
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf, nil
}

func decodeNodeID(b []byte) string {
	n := binary.BigEndian.Uint64(b)
	if n == 0 {
		return ""
	}
	return strconv.FormatUint(n, 10)
}

func encodeRank(rank uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, rank)
	return buf
}

func appendLenPrefixed(dst []byte, s string) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(len(s)))
	dst = append(dst, buf...)
	return append(dst, s...)
}

func nodeKey(prefix, id string) ([]byte, error) {
	encoded, err := encodeNodeID(id)
	if err != nil {
		return nil, err
	}
	return append([]byte(prefix), encoded...), nil
}

func counterKey(name string) []byte {
	return []byte(counterPrefix + name)
}

func parentChildKey(parentID, childID string) ([]byte, error) {
	parent, err := encodeNodeID(parentID)
	if err != nil {
		return nil, err
	}
	child, err := encodeNodeID(childID)
	if err != nil {
		return nil, err
	}
	key := append([]byte(ixParentChildPrefix), parent...)
	return append(key, child...), nil
}

func parentChildScope(parentID string) ([]byte, error) {
	parent, err := encodeNodeID(parentID)
	if err != nil {
		return nil, err
	}
	return append([]byte(ixParentChildPrefix), parent...), nil
}

func parentRankKey(parentID string, rank uint32, childID string) ([]byte, error) {
	parent, err := encodeNodeID(parentID)
	if err != nil {
		return nil, err
	}
	child, err := encodeNodeID(childID)
	if err != nil {
		return nil, err
	}
	key := append([]byte(ixParentRankPrefix), parent...)
	key = append(key, encodeRank(rank)...)
	return append(key, child...), nil
}

func parentRankScope(parentID string) ([]byte, error) {
	parent, err := encodeNodeID(parentID)
	if err != nil {
		return nil, err
	}
	return append([]byte(ixParentRankPrefix), parent...), nil
}

func tagRankKey(tag string, rank uint32, nodeID string) ([]byte, error) {
	node, err := encodeNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	key := appendLenPrefixed([]byte(ixTagRankPrefix), tag)
	key = append(key, encodeRank(rank)...)
	return append(key, node...), nil
}

func tagRankScope(tag string) []byte {
	return appendLenPrefixed([]byte(ixTagRankPrefix), tag)
}

func addrLikedKey(addr Address, nodeID string) ([]byte, error) {
	node, err := encodeNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	key := appendLenPrefixed([]byte(ixAddrLikedPrefix), string(addr))
	return append(key, node...), nil
}

func likedAddrKey(nodeID string, addr Address) ([]byte, error) {
	node, err := encodeNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	key := append([]byte(ixLikedAddrPrefix), node...)
	return appendLenPrefixed(key, string(addr)), nil
}

func reactionKey(nodeID string, addr Address) ([]byte, error) {
	node, err := encodeNodeID(nodeID)
	if err != nil {
		return nil, err
	}
	key := append([]byte(reactionEntryPrefix), node...)
	return appendLenPrefixed(key, string(addr)), nil
}

// rankedSuffix splits the trailing (rank, id) components off a ranked index
// key suffix.
func rankedSuffix(suffix []byte) (uint32, string, error) {
	if len(suffix) < 12 {
		return 0, "", fmt.Errorf("%w: ranked index key too short", ErrInvalidInput)
	}
	rank := binary.BigEndian.Uint32(suffix[len(suffix)-12 : len(suffix)-8])
	id := decodeNodeID(suffix[len(suffix)-8:])
	return rank, id, nil
}

// idSuffix reads the trailing node id component off an index key suffix.
func idSuffix(suffix []byte) (string, error) {
	if len(suffix) < 8 {
		return "", fmt.Errorf("%w: index key too short", ErrInvalidInput)
	}
	return decodeNodeID(suffix[len(suffix)-8:]), nil
}

func parseCursorRank(raw string) (uint32, error) {
	rank, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: cursor rank %q", ErrInvalidInput, raw)
	}
	return uint32(rank), nil
}
