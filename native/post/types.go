package post

import (
	"strings"

	"github.com/holiman/uint256"
)

// Address identifies an account. Validation beyond non-emptiness is the
// host's concern.
type Address string

// NodeStatus is the lifecycle state of a node.
type NodeStatus string

const (
	// StatusNormal marks a visible node.
	StatusNormal NodeStatus = "normal"
	// StatusDeleted marks a node whose content is redacted at the
	// presentation layer. The stored records remain.
	StatusDeleted NodeStatus = "deleted"
)

// LinkKind discriminates the link variants a node may carry.
type LinkKind string

const (
	LinkGeneric LinkKind = "generic"
	LinkImage   LinkKind = "image"
	LinkVideo   LinkKind = "video"
	LinkAudio   LinkKind = "audio"
)

// Link is a URL attached to a node. Provider is only meaningful for the
// audio and video kinds.
type Link struct {
	Kind     LinkKind `json:"kind"`
	URL      string   `json:"url"`
	Label    string   `json:"label,omitempty"`
	Provider string   `json:"provider,omitempty"`
}

// FeeParams holds the flat per-unit prices and the tip fee rate. TipPct is
// expressed in parts per million.
type FeeParams struct {
	Creation *uint256.Int `json:"creation"`
	Reaction *uint256.Int `json:"reaction"`
	Link     *uint256.Int `json:"link"`
	Text     *uint256.Int `json:"text"`
	Tag      *uint256.Int `json:"tag"`
	TipPct   *uint256.Int `json:"tipPct"`
}

// Normalize replaces nil price fields with zero so arithmetic never has to
// branch on missing params.
func (f FeeParams) Normalize() FeeParams {
	zero := func(v *uint256.Int) *uint256.Int {
		if v == nil {
			return uint256.NewInt(0)
		}
		return v
	}
	return FeeParams{
		Creation: zero(f.Creation),
		Reaction: zero(f.Reaction),
		Link:     zero(f.Link),
		Text:     zero(f.Text),
		Tag:      zero(f.Tag),
		TipPct:   zero(f.TipPct),
	}
}

// Config is the global post configuration.
type Config struct {
	// Denom is the token denomination used for payments and fees.
	Denom string `json:"denom"`
	// FeeRecipient receives the fee cut of tips. Empty disables fees.
	FeeRecipient Address `json:"feeRecipient,omitempty"`
	// Fees are the prices and rates applied to content actions.
	Fees FeeParams `json:"fees"`
}

// NodeHeader is the hot record loaded by most mutations.
type NodeHeader struct {
	ID        string  `json:"id"`
	ParentID  string  `json:"parentId"`
	CreatedBy Address `json:"createdBy"`
}

// NodeAttributes holds the content fields that change only on edits.
type NodeAttributes struct {
	CreatedAt int64  `json:"createdAt"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Links     []Link `json:"links"`
}

// Node is the full view assembled from the stored records on read.
type Node struct {
	ID         string       `json:"id"`
	Status     NodeStatus   `json:"status"`
	ParentID   string       `json:"parentId"`
	NReplies   uint16       `json:"nReplies"`
	NReactions uint16       `json:"nReactions"`
	NLikes     uint32       `json:"nLikes"`
	Royalties  *uint256.Int `json:"royalties"`
	CreatedBy  Address      `json:"createdBy"`
	CreatedAt  int64        `json:"createdAt"`
	UpdatedAt  int64        `json:"updatedAt"`
	Title      string       `json:"title"`
	Body       string       `json:"body,omitempty"`
	Links      []Link       `json:"links"`
	Tags       []string     `json:"tags"`
}

// NodeInitArgs describes a node to be created.
type NodeInitArgs struct {
	Title    string   `json:"title"`
	Body     string   `json:"body,omitempty"`
	Links    []Link   `json:"links,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ParentID string   `json:"parentId"`
}

// InstantiateMsg bootstraps the post: its config, operator and root node.
type InstantiateMsg struct {
	Config   Config       `json:"config"`
	Operator Address      `json:"operator,omitempty"`
	Root     NodeInitArgs `json:"root"`
}

// LikeMsg toggles a like, optionally carrying a tip settled in the same call.
type LikeMsg struct {
	NodeID    string       `json:"nodeId"`
	TipAmount *uint256.Int `json:"tipAmount,omitempty"`
}

// TipMsg sends the node creator a tip.
type TipMsg struct {
	NodeID    string       `json:"nodeId"`
	TipAmount *uint256.Int `json:"tipAmount"`
}

// ReactionKind discriminates reaction variants.
type ReactionKind string

const (
	ReactionEmoji ReactionKind = "emoji"
	ReactionImage ReactionKind = "image"
)

// ReactMsg toggles a reaction on a node.
type ReactMsg struct {
	NodeID string       `json:"nodeId"`
	Kind   ReactionKind `json:"kind"`
	Value  string       `json:"value"`
}

// Payment is a transfer the host must execute after the call commits. The
// engine only emits these; it never moves funds itself.
type Payment struct {
	Recipient Address      `json:"recipient"`
	Denom     string       `json:"denom"`
	Amount    *uint256.Int `json:"amount"`
}

// ReplyResult reports the id assigned to a newly created node.
type ReplyResult struct {
	ID string `json:"id"`
}

// LikeResult reports the post-toggle like state of a node.
type LikeResult struct {
	Liked    bool      `json:"liked"`
	NLikes   uint32    `json:"nLikes"`
	Payments []Payment `json:"payments,omitempty"`
}

// ReactResult reports the post-toggle reaction state of a node.
type ReactResult struct {
	Reacted    bool   `json:"reacted"`
	NReactions uint16 `json:"nReactions"`
}

// TipResult carries the payments emitted by a tip.
type TipResult struct {
	Payments []Payment `json:"payments"`
}

// InfoResponse is the global post metadata.
type InfoResponse struct {
	Operator  Address      `json:"operator"`
	Config    Config       `json:"config"`
	Royalties *uint256.Int `json:"royalties"`
	NumNodes  uint64       `json:"nNodes"`
}

// CostSubtotals breaks a node cost into its components.
type CostSubtotals struct {
	Creation *uint256.Int `json:"creation"`
	Body     *uint256.Int `json:"body"`
	Tags     *uint256.Int `json:"tags"`
	Links    *uint256.Int `json:"links"`
}

// CostResult is the priced cost of a content action.
type CostResult struct {
	Total     *uint256.Int  `json:"total"`
	Subtotals CostSubtotals `json:"subtotals"`
}

// CostQueryArgs describes the shape being priced.
type CostQueryArgs struct {
	Node     NodeInitArgs `json:"node"`
	IsUpdate bool         `json:"isUpdate"`
}

// OrderBy selects the traversal order for child listings.
type OrderBy string

const (
	OrderByTime  OrderBy = "time"
	OrderByLikes OrderBy = "likes"
)

// NodesByParentIDQuery pages over the children of one parent.
type NodesByParentIDQuery struct {
	ParentID string   `json:"parentId"`
	OrderBy  OrderBy  `json:"orderBy"`
	Limit    int      `json:"limit"`
	Desc     bool     `json:"desc"`
	Cursor   []string `json:"cursor,omitempty"`
}

// NodesByIDsQuery hydrates an explicit id list with cursor resumption.
type NodesByIDsQuery struct {
	IDs     []string `json:"ids"`
	OrderBy OrderBy  `json:"orderBy"`
	Limit   int      `json:"limit"`
	Desc    bool     `json:"desc"`
	Cursor  []string `json:"cursor,omitempty"`
}

// NodesByTagQuery pages over nodes carrying a tag, ranked by like count.
type NodesByTagQuery struct {
	Tag    string   `json:"tag"`
	Limit  int      `json:"limit"`
	Desc   bool     `json:"desc"`
	Cursor []string `json:"cursor,omitempty"`
}

// ChatQuery pages over all nodes flat, in numeric id order.
type ChatQuery struct {
	Limit  int    `json:"limit"`
	Desc   bool   `json:"desc"`
	Cursor string `json:"cursor,omitempty"`
}

// NodesPage is one page of nodes plus the continuation cursor, absent at the
// end of data.
type NodesPage struct {
	Cursor []string `json:"cursor,omitempty"`
	Nodes  []*Node  `json:"nodes"`
}

// ChatPage is the flat-traversal variant of NodesPage.
type ChatPage struct {
	Cursor string  `json:"cursor,omitempty"`
	Nodes  []*Node `json:"nodes"`
}

// RootResponse is the root node plus a preview of its top-ranked replies.
type RootResponse struct {
	Root    *Node   `json:"root"`
	Replies []*Node `json:"replies"`
}

// NormalizeTag canonicalises a tag for indexing. The write and read paths
// must agree on this.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
