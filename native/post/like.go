package post

import "math"

// toggleLike flips the (node, liker) state and relocates the rank-ordered
// index entries to the new like count. Relocation is delete-then-insert: the
// rank is part of the key, so updating in place is impossible and a stale
// entry would surface the node at two ranks at once.
//
// The tag-ranked index is relocated on the like transition only. The unlike
// path leaves it untouched, so a node's tag-scoped position reflects likes
// accrued but never decrements. This matches the deployed behavior and is
// pinned by tests; do not "fix" it without a migration for existing entries.
func (s *state) toggleLike(sender Address, nodeID string) (liked bool, nLikes uint32, err error) {
	header, err := s.header(nodeID)
	if err != nil {
		return false, 0, err
	}
	count, err := s.numLikes(nodeID)
	if err != nil {
		return false, 0, err
	}

	already, err := s.likeExists(nodeID, sender)
	if err != nil {
		return false, 0, err
	}

	if already {
		if err := s.clearLike(nodeID, sender); err != nil {
			return false, 0, err
		}
		if count > 0 {
			next := count - 1
			stale, err := parentRankKey(header.ParentID, count, nodeID)
			if err != nil {
				return false, 0, err
			}
			if err := s.indexDelete(stale); err != nil {
				return false, 0, err
			}
			if next > 0 {
				fresh, err := parentRankKey(header.ParentID, next, nodeID)
				if err != nil {
					return false, 0, err
				}
				if err := s.indexPut(fresh); err != nil {
					return false, 0, err
				}
				if err := s.setNumLikes(nodeID, next); err != nil {
					return false, 0, err
				}
			} else {
				// Absence of the counter is the canonical zero.
				if err := s.clearNumLikes(nodeID); err != nil {
					return false, 0, err
				}
			}
			count = next
		}
		return false, count, nil
	}

	if err := s.setLike(nodeID, sender); err != nil {
		return false, 0, err
	}
	if count < math.MaxUint32 {
		next := count + 1
		stale, err := parentRankKey(header.ParentID, count, nodeID)
		if err != nil {
			return false, 0, err
		}
		if err := s.indexDelete(stale); err != nil {
			return false, 0, err
		}
		fresh, err := parentRankKey(header.ParentID, next, nodeID)
		if err != nil {
			return false, 0, err
		}
		if err := s.indexPut(fresh); err != nil {
			return false, 0, err
		}

		tags, err := s.tags(nodeID)
		if err != nil {
			return false, 0, err
		}
		for _, tag := range tags {
			normalized := NormalizeTag(tag)
			staleTag, err := tagRankKey(normalized, count, nodeID)
			if err != nil {
				return false, 0, err
			}
			if err := s.indexDelete(staleTag); err != nil {
				return false, 0, err
			}
			freshTag, err := tagRankKey(normalized, next, nodeID)
			if err != nil {
				return false, 0, err
			}
			if err := s.indexPut(freshTag); err != nil {
				return false, 0, err
			}
		}

		if err := s.setNumLikes(nodeID, next); err != nil {
			return false, 0, err
		}
		count = next
	}
	return true, count, nil
}
