package model

import (
	"encoding/json"
	"time"
)

// Node is a learning unit inside one graph.
type Node struct {
	ID            string          `json:"id"`
	GraphID       string          `json:"graph_id"`
	Title         string          `json:"title,omitempty"`
	Description   string          `json:"description,omitempty"`
	MasteryPoints int             `json:"mastery_points"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
