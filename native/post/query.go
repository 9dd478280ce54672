package post

import (
	"fmt"
	"strconv"
)

// MaxPageSize caps every page regardless of the requested limit.
const MaxPageSize = 50

// PreviewReplyCount is the size of the root reply preview.
const PreviewReplyCount = 10

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// buildNode hydrates the full node view from its stored records. Header,
// status, attributes and tags are required; a gap there is a consistency
// failure, not something to skip. Counters default to zero when absent.
func (s *state) buildNode(header NodeHeader) (*Node, error) {
	status, err := s.status(header.ID)
	if err != nil {
		return nil, err
	}
	attrs, err := s.attrs(header.ID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags(header.ID)
	if err != nil {
		return nil, err
	}
	updatedAt, err := s.updatedAt(header.ID)
	if err != nil {
		return nil, err
	}
	nReplies, err := s.numReplies(header.ID)
	if err != nil {
		return nil, err
	}
	nReactions, err := s.numReactions(header.ID)
	if err != nil {
		return nil, err
	}
	nLikes, err := s.numLikes(header.ID)
	if err != nil {
		return nil, err
	}
	royalties, err := s.nodeRoyalties(header.ID)
	if err != nil {
		return nil, err
	}
	return &Node{
		ID:         header.ID,
		Status:     status,
		ParentID:   header.ParentID,
		NReplies:   nReplies,
		NReactions: nReactions,
		NLikes:     nLikes,
		Royalties:  royalties,
		CreatedBy:  header.CreatedBy,
		CreatedAt:  attrs.CreatedAt,
		UpdatedAt:  updatedAt,
		Title:      attrs.Title,
		Body:       attrs.Body,
		Links:      attrs.Links,
		Tags:       tags,
	}, nil
}

func (s *state) buildNodeByID(id string) (*Node, error) {
	header, err := s.header(id)
	if err != nil {
		return nil, err
	}
	return s.buildNode(header)
}

// collectWalk pages over one index scope, hydrating each visited key's node.
// It returns the collected nodes and the rank component of the last visited
// key (zero when the scope is unranked).
func (s *state) collectWalk(scope, after []byte, desc, ranked bool, limit int) ([]*Node, uint32, error) {
	nodes := make([]*Node, 0, limit)
	var tailRank uint32
	err := s.walkIndex(scope, after, desc, func(suffix []byte) (bool, error) {
		var id string
		var err error
		if ranked {
			tailRank, id, err = rankedSuffix(suffix)
		} else {
			id, err = idSuffix(suffix)
		}
		if err != nil {
			return false, err
		}
		node, err := s.buildNodeByID(id)
		if err != nil {
			return false, err
		}
		nodes = append(nodes, node)
		return len(nodes) < limit, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return nodes, tailRank, nil
}

// edgeCursor implements the whole-index termination rule used by the
// by-parent and by-ids modes: the cursor is absent exactly when the last
// emitted node sits at the last key reachable in the traversal direction
// across the entire index.
func (s *state) edgeCursor(indexPrefix []byte, desc bool, last *Node, cursor []string) ([]string, error) {
	edge, ok, err := s.indexEdge(indexPrefix, !desc)
	if err != nil {
		return nil, err
	}
	if ok {
		finalID, err := idSuffix(edge)
		if err != nil {
			return nil, err
		}
		if finalID == last.ID {
			return nil, nil
		}
	}
	return cursor, nil
}

// NodesByParentID pages over the children of one parent, ordered by creation
// time or by like rank.
func (s *state) nodesByParentID(q NodesByParentIDQuery) (*NodesPage, error) {
	limit := clampLimit(q.Limit)

	if q.OrderBy == OrderByLikes {
		scope, err := parentRankScope(q.ParentID)
		if err != nil {
			return nil, err
		}
		var after []byte
		if len(q.Cursor) > 0 {
			if len(q.Cursor) < 2 {
				return nil, fmt.Errorf("%w: ranked cursor needs rank and id", ErrInvalidInput)
			}
			rank, err := parseCursorRank(q.Cursor[0])
			if err != nil {
				return nil, err
			}
			after, err = parentRankKey(q.ParentID, rank, q.Cursor[1])
			if err != nil {
				return nil, err
			}
		}
		nodes, tailRank, err := s.collectWalk(scope, after, q.Desc, true, limit)
		if err != nil {
			return nil, err
		}
		page := &NodesPage{Nodes: nodes}
		if len(nodes) > 0 {
			tail := nodes[len(nodes)-1]
			page.Cursor, err = s.edgeCursor([]byte(ixParentRankPrefix), q.Desc, tail,
				[]string{strconv.FormatUint(uint64(tailRank), 10), tail.ID})
			if err != nil {
				return nil, err
			}
		}
		return page, nil
	}

	scope, err := parentChildScope(q.ParentID)
	if err != nil {
		return nil, err
	}
	var after []byte
	if len(q.Cursor) > 0 {
		after, err = parentChildKey(q.ParentID, q.Cursor[0])
		if err != nil {
			return nil, err
		}
	}
	nodes, _, err := s.collectWalk(scope, after, q.Desc, false, limit)
	if err != nil {
		return nil, err
	}
	page := &NodesPage{Nodes: nodes}
	if len(nodes) > 0 {
		tail := nodes[len(nodes)-1]
		page.Cursor, err = s.edgeCursor([]byte(ixParentChildPrefix), q.Desc, tail, []string{tail.ID})
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}

// nodesByIDs hydrates the supplied ids in their given order (reversed when
// descending), resuming after the cursor id.
func (s *state) nodesByIDs(q NodesByIDsQuery) (*NodesPage, error) {
	limit := clampLimit(q.Limit)
	seq := append([]string(nil), q.IDs...)
	if q.Desc {
		for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}
	start := 0
	if len(q.Cursor) > 0 {
		found := false
		for i, id := range seq {
			if id == q.Cursor[0] {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: cursor id %q not in requested ids", ErrInvalidInput, q.Cursor[0])
		}
	}
	nodes := make([]*Node, 0, limit)
	for _, id := range seq[start:] {
		node, err := s.buildNodeByID(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if len(nodes) == limit {
			break
		}
	}
	page := &NodesPage{Nodes: nodes}
	if len(nodes) > 0 && len(seq) > 0 {
		tail := nodes[len(nodes)-1]
		if tail.ID != seq[len(seq)-1] {
			page.Cursor = []string{tail.ID}
		}
	}
	return page, nil
}

// nodesByTag pages over nodes carrying the tag, ordered by like rank. The
// termination rule here is the simpler "cursor present iff the page is
// full"; unlike the by-parent modes it does not consult the index edge, so
// an exact-boundary page yields one final empty page.
func (s *state) nodesByTag(q NodesByTagQuery) (*NodesPage, error) {
	limit := clampLimit(q.Limit)
	tag := NormalizeTag(q.Tag)
	scope := tagRankScope(tag)
	var after []byte
	if len(q.Cursor) > 0 {
		if len(q.Cursor) < 2 {
			return nil, fmt.Errorf("%w: ranked cursor needs rank and id", ErrInvalidInput)
		}
		rank, err := parseCursorRank(q.Cursor[0])
		if err != nil {
			return nil, err
		}
		after, err = tagRankKey(tag, rank, q.Cursor[1])
		if err != nil {
			return nil, err
		}
	}
	nodes, tailRank, err := s.collectWalk(scope, after, q.Desc, true, limit)
	if err != nil {
		return nil, err
	}
	page := &NodesPage{Nodes: nodes}
	if len(nodes) == limit {
		tail := nodes[len(nodes)-1]
		page.Cursor = []string{strconv.FormatUint(uint64(tailRank), 10), tail.ID}
	}
	return page, nil
}

// chat walks all node ids flat in numeric order. Ids are dense from 1, so
// the traversal iterates the id sequence directly instead of an index.
func (s *state) chat(q ChatQuery) (*ChatPage, error) {
	limit := clampLimit(q.Limit)
	total, err := s.counter(counterNodeID)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, limit)
	appendNode := func(id uint64) error {
		node, err := s.buildNodeByID(strconv.FormatUint(id, 10))
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		return nil
	}

	if q.Desc {
		start := total
		if q.Cursor != "" {
			at, err := strconv.ParseUint(q.Cursor, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: chat cursor %q", ErrInvalidInput, q.Cursor)
			}
			start = 0
			if at > 0 {
				start = at - 1
			}
		}
		for id := start; id >= 1 && len(nodes) < limit; id-- {
			if err := appendNode(id); err != nil {
				return nil, err
			}
		}
	} else {
		start := uint64(1)
		if q.Cursor != "" {
			at, err := strconv.ParseUint(q.Cursor, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: chat cursor %q", ErrInvalidInput, q.Cursor)
			}
			start = at + 1
		}
		for id := start; id <= total && len(nodes) < limit; id++ {
			if err := appendNode(id); err != nil {
				return nil, err
			}
		}
	}

	page := &ChatPage{Nodes: nodes}
	if len(nodes) == limit {
		page.Cursor = nodes[len(nodes)-1].ID
	}
	return page, nil
}

// rootPreview hydrates the root node and its top-ranked replies.
func (s *state) rootPreview() (*RootResponse, error) {
	root, err := s.buildNodeByID(RootNodeID)
	if err != nil {
		return nil, err
	}
	scope, err := parentRankScope(RootNodeID)
	if err != nil {
		return nil, err
	}
	replies := make([]*Node, 0, PreviewReplyCount)
	err = s.walkIndex(scope, nil, true, func(suffix []byte) (bool, error) {
		_, id, err := rankedSuffix(suffix)
		if err != nil {
			return false, err
		}
		node, err := s.buildNodeByID(id)
		if err != nil {
			return false, err
		}
		if node.Status == StatusDeleted {
			return true, nil
		}
		replies = append(replies, node)
		return len(replies) < PreviewReplyCount, nil
	})
	if err != nil {
		return nil, err
	}
	return &RootResponse{Root: root, Replies: replies}, nil
}
