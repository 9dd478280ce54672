package post

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Secondary index entries are key-only; the key fully determines traversal
// position. Re-keying on a rank change is delete-then-insert inside the same
// transaction, so no key is ever present at two ranks.

func (s *state) indexPut(key []byte) error {
	return s.kv.Put(key, nil)
}

func (s *state) indexDelete(key []byte) error {
	return s.kv.Delete(key)
}

func (s *state) indexHas(key []byte) (bool, error) {
	return s.kv.Has(key)
}

// walkIndex visits every key under scope in byte order, descending when
// requested. A non-nil after is the exclusive cursor bound on the side
// matching the direction: ascending resumes just past it, descending just
// before it. fn receives the key suffix past the scope and returns false to
// stop early. The walk is lazy; nothing is materialized.
func (s *state) walkIndex(scope, after []byte, desc bool, fn func(suffix []byte) (bool, error)) error {
	slice := util.BytesPrefix(scope)
	if after != nil {
		if desc {
			// Limit is exclusive, which is exactly the cursor contract.
			slice.Limit = append([]byte(nil), after...)
		} else {
			slice.Start = append(append([]byte(nil), after...), 0x00)
		}
	}
	iter := s.kv.NewIterator(slice)
	defer iter.Release()

	ok := iter.First()
	advance := iter.Next
	if desc {
		ok = iter.Last()
		advance = iter.Prev
	}
	for ; ok; ok = advance() {
		cont, err := fn(iter.Key()[len(scope):])
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return iter.Error()
}

// indexEdge returns the suffix of the first or last key under scope, or ok
// false when the index is empty.
func (s *state) indexEdge(scope []byte, last bool) ([]byte, bool, error) {
	iter := s.kv.NewIterator(util.BytesPrefix(scope))
	defer iter.Release()
	ok := iter.First()
	if last {
		ok = iter.Last()
	}
	if !ok {
		return nil, false, iter.Error()
	}
	suffix := append([]byte(nil), iter.Key()[len(scope):]...)
	return suffix, true, iter.Error()
}

// --- Bidirectional liked set ---
//
// The (node, liker) and (liker, node) directions are written and cleared
// together through these helpers only, so the two sides cannot drift.

func (s *state) likeExists(nodeID string, addr Address) (bool, error) {
	key, err := addrLikedKey(addr, nodeID)
	if err != nil {
		return false, err
	}
	return s.indexHas(key)
}

func (s *state) setLike(nodeID string, addr Address) error {
	forward, err := addrLikedKey(addr, nodeID)
	if err != nil {
		return err
	}
	reverse, err := likedAddrKey(nodeID, addr)
	if err != nil {
		return err
	}
	if err := s.indexPut(forward); err != nil {
		return err
	}
	return s.indexPut(reverse)
}

func (s *state) clearLike(nodeID string, addr Address) error {
	forward, err := addrLikedKey(addr, nodeID)
	if err != nil {
		return err
	}
	reverse, err := likedAddrKey(nodeID, addr)
	if err != nil {
		return err
	}
	if err := s.indexDelete(forward); err != nil {
		return err
	}
	return s.indexDelete(reverse)
}
