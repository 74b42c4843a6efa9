package model

// GraphFilter holds criteria for querying graphs.
type GraphFilter struct {
	CourseID  string `json:"course_id,omitempty"`
	Prototype *bool  `json:"prototype,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// EdgeFilter holds criteria for querying edges within a graph.
type EdgeFilter struct {
	Type       EdgeType `json:"type,omitempty"`
	FromNodeID string   `json:"from_node_id,omitempty"`
	ToNodeID   string   `json:"to_node_id,omitempty"`
}
