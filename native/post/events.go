package post

import (
	"strconv"

	"github.com/holiman/uint256"

	"posttree/core/events"
)

const (
	// EventTypeNodeCreated is emitted when a reply (or the root) is created.
	EventTypeNodeCreated = "post.node.created"
	// EventTypeNodeLiked is emitted on every like toggle.
	EventTypeNodeLiked = "post.node.liked"
	// EventTypeNodeReacted is emitted on every reaction toggle.
	EventTypeNodeReacted = "post.node.reacted"
	// EventTypeNodeTipped is emitted when a tip is applied.
	EventTypeNodeTipped = "post.node.tipped"
	// EventTypeNodeDeleted is emitted when a node is deleted.
	EventTypeNodeDeleted = "post.node.deleted"
	// EventTypeConfigUpdated is emitted when the config is overwritten.
	EventTypeConfigUpdated = "post.config.updated"
)

func nodeCreatedEvent(id, parentID string, sender Address) events.Payload {
	return events.Payload{
		Type: EventTypeNodeCreated,
		Attributes: map[string]string{
			"nodeId":   id,
			"parentId": parentID,
			"sender":   string(sender),
		},
	}
}

func nodeLikedEvent(id string, sender Address, liked bool, nLikes uint32) events.Payload {
	return events.Payload{
		Type: EventTypeNodeLiked,
		Attributes: map[string]string{
			"nodeId": id,
			"sender": string(sender),
			"liked":  strconv.FormatBool(liked),
			"nLikes": strconv.FormatUint(uint64(nLikes), 10),
		},
	}
}

func nodeReactedEvent(id string, sender Address, reacted bool) events.Payload {
	return events.Payload{
		Type: EventTypeNodeReacted,
		Attributes: map[string]string{
			"nodeId":  id,
			"sender":  string(sender),
			"reacted": strconv.FormatBool(reacted),
		},
	}
}

func nodeTippedEvent(id string, sender Address, amount *uint256.Int) events.Payload {
	attrs := map[string]string{
		"nodeId": id,
		"sender": string(sender),
	}
	if amount != nil {
		attrs["amount"] = amount.Dec()
	}
	return events.Payload{Type: EventTypeNodeTipped, Attributes: attrs}
}

func nodeDeletedEvent(id string, sender Address) events.Payload {
	return events.Payload{
		Type: EventTypeNodeDeleted,
		Attributes: map[string]string{
			"nodeId": id,
			"sender": string(sender),
		},
	}
}

func configUpdatedEvent(sender Address) events.Payload {
	return events.Payload{
		Type:       EventTypeConfigUpdated,
		Attributes: map[string]string{"sender": string(sender)},
	}
}
