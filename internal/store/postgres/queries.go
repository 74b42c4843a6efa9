package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// graphColumns is the column list used for SELECT statements on the graphs table.
const graphColumns = `id, course_id, is_prototype, created_at, updated_at`

// nodeColumns is the column list used for SELECT statements on the nodes table.
const nodeColumns = `id, graph_id, title, description, mastery_points, metadata, created_at, updated_at`

// edgeColumns is the column list used for SELECT statements on the edges table.
const edgeColumns = `id, graph_id, from_node_id, to_node_id, type, metadata, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func queryCreateGraph(ctx context.Context, db executor, g *model.Graph) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO graphs (id, course_id, is_prototype, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		g.ID,
		g.CourseID,
		g.IsPrototype,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("graph %s: %w", g.ID, store.ErrDuplicate)
	}
	return err
}

func queryGetGraph(ctx context.Context, db executor, id string) (*model.Graph, error) {
	row := db.QueryRowContext(ctx, `SELECT `+graphColumns+` FROM graphs WHERE id = $1`, id)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("graph %s: %w", id, store.ErrNotFound)
	}
	return g, err
}

func queryListGraphs(ctx context.Context, db executor, filter model.GraphFilter) ([]*model.Graph, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.CourseID != "" {
		whereClauses = append(whereClauses, "course_id = "+nextArg())
		args = append(args, filter.CourseID)
	}

	if filter.Prototype != nil {
		whereClauses = append(whereClauses, "is_prototype = "+nextArg())
		args = append(args, *filter.Prototype)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + graphColumns + " FROM graphs" + whereSQL + " ORDER BY created_at ASC, id ASC"

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	var graphs []*model.Graph
	var total int
	for rows.Next() {
		g, t, err := scanGraphWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan graphs: %w", err)
		}
		total = t
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan graphs: %w", err)
	}

	return graphs, total, nil
}

func queryUpdateGraph(ctx context.Context, db executor, g *model.Graph) error {
	err := db.QueryRowContext(ctx, `
		UPDATE graphs SET
			course_id = $2,
			is_prototype = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		g.ID,
		g.CourseID,
		g.IsPrototype,
	).Scan(&g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("graph %s: %w", g.ID, store.ErrNotFound)
	}
	return err
}

func queryDeleteGraph(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM graphs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("graph %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func queryCreateNode(ctx context.Context, db executor, n *model.Node) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO nodes (id, graph_id, title, description, mastery_points, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID,
		n.GraphID,
		n.Title,
		n.Description,
		n.MasteryPoints,
		jsonbBytes(n.Metadata),
		n.CreatedAt,
		n.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("node %s: %w", n.ID, store.ErrDuplicate)
	}
	return err
}

func queryGetNode(ctx context.Context, db executor, id string) (*model.Node, error) {
	row := db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, store.ErrNotFound)
	}
	return n, err
}

func queryListNodes(ctx context.Context, db executor, graphID string) ([]*model.Node, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE graph_id = $1
		ORDER BY created_at ASC, id ASC`,
		graphID,
	)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func queryUpdateNode(ctx context.Context, db executor, n *model.Node) error {
	err := db.QueryRowContext(ctx, `
		UPDATE nodes SET
			title = $2,
			description = $3,
			mastery_points = $4,
			metadata = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		n.ID,
		n.Title,
		n.Description,
		n.MasteryPoints,
		jsonbBytes(n.Metadata),
	).Scan(&n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("node %s: %w", n.ID, store.ErrNotFound)
	}
	return err
}

func queryDeleteNode(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("node %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func queryCreateEdge(ctx context.Context, db executor, e *model.Edge) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO edges (id, graph_id, from_node_id, to_node_id, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID,
		e.GraphID,
		e.FromNodeID,
		e.ToNodeID,
		string(e.Type),
		jsonbBytes(e.Metadata),
		e.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("edge %s->%s type %s: %w", e.FromNodeID, e.ToNodeID, e.Type, store.ErrDuplicate)
	}
	return err
}

func queryGetEdge(ctx context.Context, db executor, id string) (*model.Edge, error) {
	row := db.QueryRowContext(ctx, `SELECT `+edgeColumns+` FROM edges WHERE id = $1`, id)
	e, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("edge %s: %w", id, store.ErrNotFound)
	}
	return e, err
}

func queryListEdges(ctx context.Context, db executor, graphID string, filter model.EdgeFilter) ([]*model.Edge, error) {
	whereClauses := []string{"graph_id = $1"}
	args := []any{graphID}
	argIdx := 1

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Type != "" {
		whereClauses = append(whereClauses, "type = "+nextArg())
		args = append(args, string(filter.Type))
	}
	if filter.FromNodeID != "" {
		whereClauses = append(whereClauses, "from_node_id = "+nextArg())
		args = append(args, filter.FromNodeID)
	}
	if filter.ToNodeID != "" {
		whereClauses = append(whereClauses, "to_node_id = "+nextArg())
		args = append(args, filter.ToNodeID)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges
		WHERE `+strings.Join(whereClauses, " AND ")+`
		ORDER BY created_at ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

func queryDeleteEdge(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM edges WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("edge %s: %w", id, store.ErrNotFound)
	}
	return nil
}
