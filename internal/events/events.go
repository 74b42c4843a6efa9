package events

import (
	"context"

	"github.com/alfredjeanlab/lattice/internal/model"
)

// Event topic constants
const (
	TopicGraphCreated = "lattice.graph.created"
	TopicGraphUpdated = "lattice.graph.updated"
	TopicGraphCopied  = "lattice.graph.copied"
	TopicGraphDeleted = "lattice.graph.deleted"

	TopicNodeCreated = "lattice.node.created"
	TopicNodeUpdated = "lattice.node.updated"
	TopicNodeDeleted = "lattice.node.deleted"

	TopicEdgeCreated = "lattice.edge.created"
	TopicEdgeDeleted = "lattice.edge.deleted"
)

// Event types

type GraphCreated struct {
	Graph *model.Graph `json:"graph"`
}

type GraphUpdated struct {
	Graph   *model.Graph   `json:"graph"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type GraphCopied struct {
	SourceGraphID string       `json:"source_graph_id"`
	Graph         *model.Graph `json:"graph"`
	NodesCopied   int          `json:"nodes_copied"`
	EdgesCopied   int          `json:"edges_copied"`
}

type GraphDeleted struct {
	GraphID      string `json:"graph_id"`
	NodesDeleted int    `json:"nodes_deleted"`
	EdgesDeleted int    `json:"edges_deleted"`
}

type NodeCreated struct {
	Node *model.Node `json:"node"`
}

type NodeUpdated struct {
	Node    *model.Node    `json:"node"`
	Changes map[string]any `json:"changes"`
}

type NodeDeleted struct {
	GraphID        string   `json:"graph_id"`
	NodeID         string   `json:"node_id"`
	DeletedEdgeIDs []string `json:"deleted_edge_ids,omitempty"`
}

type EdgeCreated struct {
	Edge *model.Edge `json:"edge"`
}

type EdgeDeleted struct {
	GraphID    string         `json:"graph_id"`
	EdgeID     string         `json:"edge_id"`
	FromNodeID string         `json:"from_node_id"`
	ToNodeID   string         `json:"to_node_id"`
	Type       model.EdgeType `json:"type"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
