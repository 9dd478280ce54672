package rpc

import (
	"encoding/json"

	"posttree/native/post"
)

type handlerFunc func(json.RawMessage) (interface{}, error)

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"post_configure":       s.postConfigure,
		"post_reply":           s.postReply,
		"post_like":            s.postLike,
		"post_react":           s.postReact,
		"post_tip":             s.postTip,
		"post_delete":          s.postDelete,
		"post_info":            s.postInfo,
		"post_cost":            s.postCost,
		"post_root":            s.postRoot,
		"post_nodesByParentId": s.postNodesByParentID,
		"post_nodesByIds":      s.postNodesByIDs,
		"post_nodesByTag":      s.postNodesByTag,
		"post_chat":            s.postChat,
	}
}

type configureParams struct {
	From   post.Address `json:"from"`
	Config post.Config  `json:"config"`
}

func (s *Server) postConfigure(raw json.RawMessage) (interface{}, error) {
	var p configureParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.engine.Configure(p.From, p.Config); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

type replyParams struct {
	From post.Address      `json:"from"`
	Node post.NodeInitArgs `json:"node"`
}

func (s *Server) postReply(raw json.RawMessage) (interface{}, error) {
	var p replyParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.engine.Reply(p.From, p.Node)
}

type likeParams struct {
	From post.Address `json:"from"`
	post.LikeMsg
}

func (s *Server) postLike(raw json.RawMessage) (interface{}, error) {
	var p likeParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.engine.ToggleLike(p.From, p.LikeMsg)
}

type reactParams struct {
	From post.Address `json:"from"`
	post.ReactMsg
}

func (s *Server) postReact(raw json.RawMessage) (interface{}, error) {
	var p reactParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.engine.ToggleReaction(p.From, p.ReactMsg)
}

type tipParams struct {
	From post.Address `json:"from"`
	post.TipMsg
}

func (s *Server) postTip(raw json.RawMessage) (interface{}, error) {
	var p tipParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.engine.Tip(p.From, p.TipMsg)
}

type deleteParams struct {
	From   post.Address `json:"from"`
	NodeID string       `json:"nodeId"`
}

func (s *Server) postDelete(raw json.RawMessage) (interface{}, error) {
	var p deleteParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	if err := s.engine.Delete(p.From, p.NodeID); err != nil {
		return nil, err
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) postInfo(json.RawMessage) (interface{}, error) {
	return s.engine.Info()
}

func (s *Server) postCost(raw json.RawMessage) (interface{}, error) {
	var p post.CostQueryArgs
	if err := decodeParams(raw, &p); err != nil {
		return nil, err
	}
	return s.engine.Cost(p)
}

func (s *Server) postRoot(json.RawMessage) (interface{}, error) {
	return s.engine.Root()
}

func (s *Server) postNodesByParentID(raw json.RawMessage) (interface{}, error) {
	var q post.NodesByParentIDQuery
	if err := decodeParams(raw, &q); err != nil {
		return nil, err
	}
	page, err := s.engine.NodesByParentID(q)
	if err != nil {
		return nil, err
	}
	observePage(len(page.Nodes))
	return page, nil
}

func (s *Server) postNodesByIDs(raw json.RawMessage) (interface{}, error) {
	var q post.NodesByIDsQuery
	if err := decodeParams(raw, &q); err != nil {
		return nil, err
	}
	page, err := s.engine.NodesByIDs(q)
	if err != nil {
		return nil, err
	}
	observePage(len(page.Nodes))
	return page, nil
}

func (s *Server) postNodesByTag(raw json.RawMessage) (interface{}, error) {
	var q post.NodesByTagQuery
	if err := decodeParams(raw, &q); err != nil {
		return nil, err
	}
	page, err := s.engine.NodesByTag(q)
	if err != nil {
		return nil, err
	}
	observePage(len(page.Nodes))
	return page, nil
}

func (s *Server) postChat(raw json.RawMessage) (interface{}, error) {
	var q post.ChatQuery
	if err := decodeParams(raw, &q); err != nil {
		return nil, err
	}
	page, err := s.engine.Chat(q)
	if err != nil {
		return nil, err
	}
	observePage(len(page.Nodes))
	return page, nil
}
