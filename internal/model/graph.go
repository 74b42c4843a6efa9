package model

import "time"

// Graph is one isolated curriculum instance. Nodes and edges belong to
// exactly one graph; no operation may reach across graph boundaries.
type Graph struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	IsPrototype bool      `json:"is_prototype"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GraphStats summarizes the contents of one graph.
type GraphStats struct {
	GraphID       string         `json:"graph_id"`
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	EdgesByType   map[string]int `json:"edges_by_type,omitempty"`
	MasteryPoints int            `json:"mastery_points"`
}
