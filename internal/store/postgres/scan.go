package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/alfredjeanlab/lattice/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanGraph scans a single row into a model.Graph.
// The row must contain columns in the order defined by graphColumns.
func scanGraph(row scannable) (*model.Graph, error) {
	var g model.Graph
	err := row.Scan(
		&g.ID,
		&g.CourseID,
		&g.IsPrototype,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// scanGraphWithTotal scans a row that has a leading total_count column
// followed by the standard graph columns. Used by queryListGraphs with
// COUNT(*) OVER().
func scanGraphWithTotal(row scannable) (*model.Graph, int, error) {
	var total int
	var g model.Graph
	err := row.Scan(
		&total,
		&g.ID,
		&g.CourseID,
		&g.IsPrototype,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	return &g, total, nil
}

// scanNode scans a single row into a model.Node.
// The row must contain columns in the order defined by nodeColumns.
func scanNode(row scannable) (*model.Node, error) {
	var n model.Node
	var metadata []byte
	err := row.Scan(
		&n.ID,
		&n.GraphID,
		&n.Title,
		&n.Description,
		&n.MasteryPoints,
		&metadata,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		n.Metadata = json.RawMessage(metadata)
	}
	return &n, nil
}

// scanNodes scans multiple rows into a slice of model.Node pointers.
func scanNodes(rows *sql.Rows) ([]*model.Node, error) {
	var nodes []*model.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// scanEdge scans a single row into a model.Edge.
// The row must contain columns in the order defined by edgeColumns.
func scanEdge(row scannable) (*model.Edge, error) {
	var e model.Edge
	var metadata []byte
	err := row.Scan(
		&e.ID,
		&e.GraphID,
		&e.FromNodeID,
		&e.ToNodeID,
		&e.Type,
		&metadata,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		e.Metadata = json.RawMessage(metadata)
	}
	return &e, nil
}

// scanEdges scans multiple rows into a slice of model.Edge pointers.
func scanEdges(rows *sql.Rows) ([]*model.Edge, error) {
	var edges []*model.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
