package model

import (
	"encoding/json"
	"time"
)

// EdgeType categorizes the relationship between two nodes.
// The set is closed: curricula only express prerequisite ordering and
// topic containment.
type EdgeType string

const (
	EdgePrerequisite EdgeType = "prerequisite"
	EdgeSubTopic     EdgeType = "sub-topic"
)

// String returns the string representation of the edge type.
func (t EdgeType) String() string {
	return string(t)
}

// IsValid checks whether the edge type is a known value.
func (t EdgeType) IsValid() bool {
	switch t {
	case EdgePrerequisite, EdgeSubTopic:
		return true
	}
	return false
}

// EdgeTypes lists every valid edge type.
func EdgeTypes() []EdgeType {
	return []EdgeType{EdgePrerequisite, EdgeSubTopic}
}

// Edge is a typed directed relationship between two nodes of the same
// graph. At most one edge of a given type may connect an ordered pair.
type Edge struct {
	ID         string          `json:"id"`
	GraphID    string          `json:"graph_id"`
	FromNodeID string          `json:"from_node_id"`
	ToNodeID   string          `json:"to_node_id"`
	Type       EdgeType        `json:"type"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
