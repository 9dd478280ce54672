package post

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"posttree/storage"
)

// state is the entity store for one call. All reads observe the call's own
// writes; the enclosing transaction commits or discards everything at once.
type state struct {
	kv storage.KV
}

func (s *state) getJSON(key []byte, out any) (bool, error) {
	raw, err := s.kv.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode record %q: %w", key, err)
	}
	return true, nil
}

func (s *state) putJSON(key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", key, err)
	}
	return s.kv.Put(key, raw)
}

// --- Global items ---

func (s *state) operator() (Address, error) {
	var op Address
	ok, err := s.getJSON([]byte(keyOperator), &op)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNotInstantiated
	}
	return op, nil
}

func (s *state) setOperator(op Address) error {
	return s.putJSON([]byte(keyOperator), op)
}

func (s *state) config() (Config, error) {
	var cfg Config
	ok, err := s.getJSON([]byte(keyConfig), &cfg)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Config{}, errNotInstantiated
	}
	cfg.Fees = cfg.Fees.Normalize()
	return cfg, nil
}

func (s *state) setConfig(cfg Config) error {
	cfg.Fees = cfg.Fees.Normalize()
	return s.putJSON([]byte(keyConfig), cfg)
}

func (s *state) royalties() (*uint256.Int, error) {
	total := new(uint256.Int)
	if _, err := s.getJSON([]byte(keyRoyalties), total); err != nil {
		return nil, err
	}
	return total, nil
}

func (s *state) addRoyalties(amount *uint256.Int) error {
	total, err := s.royalties()
	if err != nil {
		return err
	}
	next, err := addAmount(total, amount)
	if err != nil {
		return err
	}
	return s.putJSON([]byte(keyRoyalties), next)
}

// --- Counters ---

func (s *state) counter(name string) (uint64, error) {
	raw, err := s.kv.Get(counterKey(name))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (s *state) incrementCounter(name string, delta uint64) (uint64, error) {
	current, err := s.counter(name)
	if err != nil {
		return 0, err
	}
	next, err := addU64(current, delta)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := s.kv.Put(counterKey(name), buf); err != nil {
		return 0, err
	}
	return next, nil
}

// --- Per-node records ---

func (s *state) header(id string) (NodeHeader, error) {
	key, err := nodeKey(headerPrefix, id)
	if err != nil {
		return NodeHeader{}, err
	}
	var header NodeHeader
	ok, err := s.getJSON(key, &header)
	if err != nil {
		return NodeHeader{}, err
	}
	if !ok {
		return NodeHeader{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return header, nil
}

func (s *state) hasHeader(id string) (bool, error) {
	key, err := nodeKey(headerPrefix, id)
	if err != nil {
		return false, err
	}
	return s.kv.Has(key)
}

func (s *state) attrs(id string) (NodeAttributes, error) {
	key, err := nodeKey(attrsPrefix, id)
	if err != nil {
		return NodeAttributes{}, err
	}
	var attrs NodeAttributes
	ok, err := s.getJSON(key, &attrs)
	if err != nil {
		return NodeAttributes{}, err
	}
	if !ok {
		return NodeAttributes{}, fmt.Errorf("%w: attributes for id %s", ErrNotFound, id)
	}
	return attrs, nil
}

func (s *state) status(id string) (NodeStatus, error) {
	key, err := nodeKey(statusPrefix, id)
	if err != nil {
		return "", err
	}
	var status NodeStatus
	ok, err := s.getJSON(key, &status)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: status for id %s", ErrNotFound, id)
	}
	return status, nil
}

func (s *state) setStatus(id string, status NodeStatus) error {
	key, err := nodeKey(statusPrefix, id)
	if err != nil {
		return err
	}
	return s.putJSON(key, status)
}

func (s *state) tags(id string) ([]string, error) {
	key, err := nodeKey(tagsPrefix, id)
	if err != nil {
		return nil, err
	}
	var tags []string
	ok, err := s.getJSON(key, &tags)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: tags for id %s", ErrNotFound, id)
	}
	return tags, nil
}

func (s *state) updatedAt(id string) (int64, error) {
	key, err := nodeKey(updatedAtPrefix, id)
	if err != nil {
		return 0, err
	}
	var at int64
	if _, err := s.getJSON(key, &at); err != nil {
		return 0, err
	}
	return at, nil
}

func (s *state) setUpdatedAt(id string, at int64) error {
	key, err := nodeKey(updatedAtPrefix, id)
	if err != nil {
		return err
	}
	return s.putJSON(key, at)
}

func (s *state) numU16(prefix, id string) (uint16, error) {
	key, err := nodeKey(prefix, id)
	if err != nil {
		return 0, err
	}
	var n uint16
	if _, err := s.getJSON(key, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *state) setNumU16(prefix, id string, n uint16) error {
	key, err := nodeKey(prefix, id)
	if err != nil {
		return err
	}
	return s.putJSON(key, n)
}

func (s *state) numReplies(id string) (uint16, error) {
	return s.numU16(repliesPrefix, id)
}

func (s *state) numReactions(id string) (uint16, error) {
	return s.numU16(reactionsPrefix, id)
}

// numLikes treats an absent counter as zero; the counter record exists only
// while the count is positive.
func (s *state) numLikes(id string) (uint32, error) {
	key, err := nodeKey(likesPrefix, id)
	if err != nil {
		return 0, err
	}
	var n uint32
	if _, err := s.getJSON(key, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *state) setNumLikes(id string, n uint32) error {
	key, err := nodeKey(likesPrefix, id)
	if err != nil {
		return err
	}
	return s.putJSON(key, n)
}

func (s *state) clearNumLikes(id string) error {
	key, err := nodeKey(likesPrefix, id)
	if err != nil {
		return err
	}
	return s.kv.Delete(key)
}

func (s *state) nodeRoyalties(id string) (*uint256.Int, error) {
	key, err := nodeKey(nodeRoyaltiesPrefix, id)
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int)
	if _, err := s.getJSON(key, total); err != nil {
		return nil, err
	}
	return total, nil
}

func (s *state) addNodeRoyalties(id string, amount *uint256.Int) error {
	total, err := s.nodeRoyalties(id)
	if err != nil {
		return err
	}
	next, err := addAmount(total, amount)
	if err != nil {
		return err
	}
	key, err := nodeKey(nodeRoyaltiesPrefix, id)
	if err != nil {
		return err
	}
	return s.putJSON(key, next)
}

// --- Node creation ---

// createNode assigns the next id and writes the header, attribute, status,
// tag and index records for a new node. The caller supplies a validated
// parent (or "" for the root).
func (s *state) createNode(sender Address, now int64, args NodeInitArgs) (string, error) {
	if args.ParentID != "" {
		parent, err := s.header(args.ParentID)
		if err != nil {
			return "", err
		}
		replies, err := s.numReplies(parent.ID)
		if err != nil {
			return "", err
		}
		next, err := addU16(replies, 1)
		if err != nil {
			return "", err
		}
		if err := s.setNumU16(repliesPrefix, parent.ID, next); err != nil {
			return "", err
		}
	}

	if _, err := s.incrementCounter(counterNumNodes, 1); err != nil {
		return "", err
	}
	seq, err := s.incrementCounter(counterNodeID, 1)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%d", seq)

	creationKey, err := parentChildKey(args.ParentID, id)
	if err != nil {
		return "", err
	}
	if err := s.indexPut(creationKey); err != nil {
		return "", err
	}
	rankKey, err := parentRankKey(args.ParentID, 0, id)
	if err != nil {
		return "", err
	}
	if err := s.indexPut(rankKey); err != nil {
		return "", err
	}

	headerKey, err := nodeKey(headerPrefix, id)
	if err != nil {
		return "", err
	}
	if err := s.putJSON(headerKey, NodeHeader{ID: id, ParentID: args.ParentID, CreatedBy: sender}); err != nil {
		return "", err
	}
	if err := s.setUpdatedAt(id, now); err != nil {
		return "", err
	}
	if err := s.setStatus(id, StatusNormal); err != nil {
		return "", err
	}

	links := args.Links
	if links == nil {
		links = []Link{}
	}
	attrsKey, err := nodeKey(attrsPrefix, id)
	if err != nil {
		return "", err
	}
	if err := s.putJSON(attrsKey, NodeAttributes{CreatedAt: now, Title: args.Title, Body: args.Body, Links: links}); err != nil {
		return "", err
	}

	tags := args.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsKey, err := nodeKey(tagsPrefix, id)
	if err != nil {
		return "", err
	}
	if err := s.putJSON(tagsKey, tags); err != nil {
		return "", err
	}
	for _, tag := range tags {
		key, err := tagRankKey(NormalizeTag(tag), 0, id)
		if err != nil {
			return "", err
		}
		if err := s.indexPut(key); err != nil {
			return "", err
		}
	}

	return id, nil
}
