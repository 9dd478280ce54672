package post

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"posttree/core/events"
	"posttree/storage"
)

// RootNodeID is the id the root node always receives.
const RootNodeID = "1"

// Engine wires the post tree business logic with persistence and event
// emission. Every mutation runs inside one storage transaction: it either
// commits as a unit or leaves no trace, and events and payments surface only
// after commit.
type Engine struct {
	db      *storage.Database
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs an engine over the given database.
func NewEngine(db *storage.Database) *Engine {
	return &Engine{
		db:      db,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evts ...events.Event) {
	for _, evt := range evts {
		e.emitter.Emit(evt)
	}
}

func (e *Engine) guard() error {
	if e == nil || e.db == nil {
		return errNilEngine
	}
	return nil
}

func validateSender(sender Address) error {
	if strings.TrimSpace(string(sender)) == "" {
		return fmt.Errorf("%w: sender required", ErrInvalidInput)
	}
	return nil
}

// Instantiated reports whether the post has been bootstrapped.
func (e *Engine) Instantiated() (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	var exists bool
	err := e.db.View(func(kv storage.KV) error {
		var err error
		exists, err = kv.Has([]byte(keyCreatedAt))
		return err
	})
	return exists, err
}

// Instantiate bootstraps the post: global records, operator, config and the
// root node. The root's parent id is forced to "" regardless of input and
// the root is always assigned id "1".
func (e *Engine) Instantiate(sender Address, msg InstantiateMsg) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := validateSender(sender); err != nil {
		return err
	}
	now := e.nowFn()
	operator := msg.Operator
	if operator == "" {
		operator = sender
	}
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		exists, err := kv.Has([]byte(keyCreatedAt))
		if err != nil {
			return err
		}
		if exists {
			return errInstantiated
		}
		if err := s.putJSON([]byte(keyCreatedAt), now); err != nil {
			return err
		}
		if err := s.putJSON([]byte(keyCreatedBy), sender); err != nil {
			return err
		}
		if err := s.putJSON([]byte(keyRoyalties), zeroAmount()); err != nil {
			return err
		}
		if err := s.setConfig(msg.Config); err != nil {
			return err
		}
		if err := s.setOperator(operator); err != nil {
			return err
		}
		root := msg.Root
		root.ParentID = ""
		_, err = s.createNode(sender, now, root)
		return err
	})
	if err != nil {
		return err
	}
	e.emit(nodeCreatedEvent(RootNodeID, "", sender))
	return nil
}

// Configure overwrites the global configuration. Operator only.
func (e *Engine) Configure(sender Address, cfg Config) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := validateSender(sender); err != nil {
		return err
	}
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		operator, err := s.operator()
		if err != nil {
			return err
		}
		if sender != operator {
			return fmt.Errorf("%w: only the operator may configure", ErrUnauthorized)
		}
		return s.setConfig(cfg)
	})
	if err != nil {
		return err
	}
	e.emit(configUpdatedEvent(sender))
	return nil
}

// Reply creates a new node under an existing parent.
func (e *Engine) Reply(sender Address, args NodeInitArgs) (*ReplyResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := validateSender(sender); err != nil {
		return nil, err
	}
	now := e.nowFn()
	var id string
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		var err error
		id, err = s.createNode(sender, now, args)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.emit(nodeCreatedEvent(id, args.ParentID, sender))
	return &ReplyResult{ID: id}, nil
}

// ToggleLike flips the sender's like on a node, relocating the rank indices,
// and settles an attached tip in the same call when present.
func (e *Engine) ToggleLike(sender Address, msg LikeMsg) (*LikeResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := validateSender(sender); err != nil {
		return nil, err
	}
	result := &LikeResult{}
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		cfg, err := s.config()
		if err != nil {
			return err
		}
		header, err := s.header(msg.NodeID)
		if err != nil {
			return err
		}
		result.Liked, result.NLikes, err = s.toggleLike(sender, msg.NodeID)
		if err != nil {
			return err
		}
		result.Payments, err = s.applyTip(cfg, header.CreatedBy, msg.NodeID, msg.TipAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.emit(nodeLikedEvent(msg.NodeID, sender, result.Liked, result.NLikes))
	if len(result.Payments) > 0 {
		e.emit(nodeTippedEvent(msg.NodeID, sender, msg.TipAmount))
	}
	return result, nil
}

// ToggleReaction flips the sender's reaction on a node.
func (e *Engine) ToggleReaction(sender Address, msg ReactMsg) (*ReactResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := validateSender(sender); err != nil {
		return nil, err
	}
	if msg.Kind != ReactionEmoji && msg.Kind != ReactionImage {
		return nil, fmt.Errorf("%w: reaction kind %q", ErrInvalidInput, msg.Kind)
	}
	result := &ReactResult{}
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		if _, err := s.header(msg.NodeID); err != nil {
			return err
		}
		key, err := reactionKey(msg.NodeID, sender)
		if err != nil {
			return err
		}
		exists, err := kv.Has(key)
		if err != nil {
			return err
		}
		count, err := s.numReactions(msg.NodeID)
		if err != nil {
			return err
		}
		if exists {
			if err := kv.Delete(key); err != nil {
				return err
			}
			if count > 0 {
				count--
			}
		} else {
			if err := s.putJSON(key, msg); err != nil {
				return err
			}
			count, err = addU16(count, 1)
			if err != nil {
				return err
			}
		}
		if err := s.setNumU16(reactionsPrefix, msg.NodeID, count); err != nil {
			return err
		}
		result.Reacted = !exists
		result.NReactions = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.emit(nodeReactedEvent(msg.NodeID, sender, result.Reacted))
	return result, nil
}

// Tip sends the node creator a tip, splitting off the configured fee.
func (e *Engine) Tip(sender Address, msg TipMsg) (*TipResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if err := validateSender(sender); err != nil {
		return nil, err
	}
	if msg.TipAmount == nil || msg.TipAmount.IsZero() {
		return nil, fmt.Errorf("%w: tip amount required", ErrInvalidInput)
	}
	result := &TipResult{}
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		cfg, err := s.config()
		if err != nil {
			return err
		}
		header, err := s.header(msg.NodeID)
		if err != nil {
			return err
		}
		result.Payments, err = s.applyTip(cfg, header.CreatedBy, msg.NodeID, msg.TipAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.emit(nodeTippedEvent(msg.NodeID, sender, msg.TipAmount))
	return result, nil
}

// Delete flips a node's status to deleted. Only the node creator or the
// operator may delete. The stored content records remain; redaction is the
// presentation layer's concern.
func (e *Engine) Delete(sender Address, nodeID string) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := validateSender(sender); err != nil {
		return err
	}
	now := e.nowFn()
	err := e.db.Update(func(kv storage.KV) error {
		s := &state{kv: kv}
		header, err := s.header(nodeID)
		if err != nil {
			return err
		}
		operator, err := s.operator()
		if err != nil {
			return err
		}
		if sender != header.CreatedBy && sender != operator {
			return fmt.Errorf("%w: only the creator or operator may delete", ErrUnauthorized)
		}
		if err := s.setStatus(nodeID, StatusDeleted); err != nil {
			return err
		}
		return s.setUpdatedAt(nodeID, now)
	})
	if err != nil {
		return err
	}
	e.emit(nodeDeletedEvent(nodeID, sender))
	return nil
}

// Info returns the global post metadata.
func (e *Engine) Info() (*InfoResponse, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	info := &InfoResponse{}
	err := e.db.View(func(kv storage.KV) error {
		s := &state{kv: kv}
		var err error
		if info.Operator, err = s.operator(); err != nil {
			return err
		}
		if info.Config, err = s.config(); err != nil {
			return err
		}
		if info.Royalties, err = s.royalties(); err != nil {
			return err
		}
		info.NumNodes, err = s.counter(counterNumNodes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Cost prices the supplied node shape against the current fee params.
func (e *Engine) Cost(args CostQueryArgs) (*CostResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	result := &CostResult{}
	err := e.db.View(func(kv storage.KV) error {
		s := &state{kv: kv}
		cfg, err := s.config()
		if err != nil {
			return err
		}
		result.Total, result.Subtotals, err = ComputeNodeCost(
			cfg.Fees, args.IsUpdate, len(args.Node.Body), len(args.Node.Tags), len(args.Node.Links))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NodesByParentID pages over the children of a parent.
func (e *Engine) NodesByParentID(q NodesByParentIDQuery) (*NodesPage, error) {
	return e.viewNodesPage(func(s *state) (*NodesPage, error) { return s.nodesByParentID(q) })
}

// NodesByIDs hydrates an explicit id list.
func (e *Engine) NodesByIDs(q NodesByIDsQuery) (*NodesPage, error) {
	return e.viewNodesPage(func(s *state) (*NodesPage, error) { return s.nodesByIDs(q) })
}

// NodesByTag pages over nodes carrying a tag, ranked by like count.
func (e *Engine) NodesByTag(q NodesByTagQuery) (*NodesPage, error) {
	return e.viewNodesPage(func(s *state) (*NodesPage, error) { return s.nodesByTag(q) })
}

// Chat pages over all nodes flat in numeric id order.
func (e *Engine) Chat(q ChatQuery) (*ChatPage, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	var page *ChatPage
	err := e.db.View(func(kv storage.KV) error {
		var err error
		page, err = (&state{kv: kv}).chat(q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Root returns the root node and a preview of its top-ranked replies.
func (e *Engine) Root() (*RootResponse, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	var resp *RootResponse
	err := e.db.View(func(kv storage.KV) error {
		var err error
		resp, err = (&state{kv: kv}).rootPreview()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) viewNodesPage(fn func(*state) (*NodesPage, error)) (*NodesPage, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	var page *NodesPage
	err := e.db.View(func(kv storage.KV) error {
		var err error
		page, err = fn(&state{kv: kv})
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// IsAlreadyInstantiated reports whether err is the duplicate-instantiate
// failure, which callers bootstrapping idempotently may ignore.
func IsAlreadyInstantiated(err error) bool {
	return errors.Is(err, errInstantiated)
}
