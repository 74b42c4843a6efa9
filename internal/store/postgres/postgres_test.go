package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// graphRowColumns is the column list for scanGraph results.
var graphRowColumns = []string{"id", "course_id", "is_prototype", "created_at", "updated_at"}

// graphWithTotalColumns is the column list for queryListGraphs results.
var graphWithTotalColumns = []string{"total_count", "id", "course_id", "is_prototype", "created_at", "updated_at"}

// nodeRowColumns is the column list for scanNode results.
var nodeRowColumns = []string{"id", "graph_id", "title", "description", "mastery_points", "metadata", "created_at", "updated_at"}

// edgeRowColumns is the column list for scanEdge results.
var edgeRowColumns = []string{"id", "graph_id", "from_node_id", "to_node_id", "type", "metadata", "created_at"}

func TestScanHelpers(t *testing.T) {
	// jsonbBytes
	if jsonbBytes(nil) != nil {
		t.Error("jsonbBytes(nil) should be nil")
	}
	if jsonbBytes(json.RawMessage{}) != nil {
		t.Error("jsonbBytes({}) should be nil")
	}
	input := json.RawMessage(`{"key":"value"}`)
	if string(jsonbBytes(input)) != `{"key":"value"}` {
		t.Errorf("jsonbBytes = %s", jsonbBytes(input))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("expected 23505 to be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("plain error")) {
		t.Error("plain error is not a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}

func TestQueryCreateGraph(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	g := &model.Graph{ID: "gr-test1", CourseID: "CS101", CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec("INSERT INTO graphs").
		WithArgs("gr-test1", "CS101", false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateGraph(context.Background(), db, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryCreateGraph_DuplicateID(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	g := &model.Graph{ID: "gr-test1", CourseID: "CS101", CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec("INSERT INTO graphs").
		WithArgs("gr-test1", "CS101", false, now, now).
		WillReturnError(&pq.Error{Code: "23505"})

	err := queryCreateGraph(context.Background(), db, g)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected store.ErrDuplicate, got %v", err)
	}
}

func TestQueryGetGraph(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(graphRowColumns).
		AddRow("gr-test1", "CS101", true, now, now)
	mock.ExpectQuery("SELECT .+ FROM graphs WHERE id = \\$1").WithArgs("gr-test1").WillReturnRows(rows)

	g, err := queryGetGraph(context.Background(), db, "gr-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ID != "gr-test1" || g.CourseID != "CS101" || !g.IsPrototype {
		t.Fatalf("got id=%q course_id=%q is_prototype=%v", g.ID, g.CourseID, g.IsPrototype)
	}
}

func TestQueryGetGraph_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM graphs WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetGraph(context.Background(), db, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryListGraphs(t *testing.T) {
	now := time.Now().UTC()
	proto := func(v bool) *bool { return &v }

	for _, tc := range []struct {
		name      string
		filter    model.GraphFilter
		queryPat  string
		args      []driver.Value
		wantCount int
		wantTotal int
	}{
		{
			name:      "NoFilter",
			filter:    model.GraphFilter{},
			queryPat:  "SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM graphs ORDER BY created_at ASC",
			wantCount: 2,
			wantTotal: 2,
		},
		{
			name:      "FilterByCourseID",
			filter:    model.GraphFilter{CourseID: "CS101"},
			queryPat:  "SELECT .+ FROM graphs WHERE course_id = \\$1 ORDER BY",
			args:      []driver.Value{"CS101"},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "FilterByPrototype",
			filter:    model.GraphFilter{Prototype: proto(true)},
			queryPat:  "SELECT .+ FROM graphs WHERE is_prototype = \\$1 ORDER BY",
			args:      []driver.Value{true},
			wantCount: 1,
			wantTotal: 1,
		},
		{
			name:      "WithLimitAndOffset",
			filter:    model.GraphFilter{Limit: 10, Offset: 5},
			queryPat:  "SELECT .+ FROM graphs ORDER BY .+ LIMIT \\$1 OFFSET \\$2",
			args:      []driver.Value{10, 5},
			wantCount: 1,
			wantTotal: 20,
		},
		{
			name:      "CombinedFilters",
			filter:    model.GraphFilter{CourseID: "CS101", Prototype: proto(false), Limit: 5},
			queryPat:  "SELECT .+ FROM graphs WHERE course_id = \\$1 AND is_prototype = \\$2 ORDER BY .+ LIMIT \\$3",
			args:      []driver.Value{"CS101", false, 5},
			wantCount: 1,
			wantTotal: 3,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			eq := mock.ExpectQuery(tc.queryPat)
			if len(tc.args) > 0 {
				eq.WithArgs(tc.args...)
			}
			r := sqlmock.NewRows(graphWithTotalColumns)
			for i := range tc.wantCount {
				r.AddRow(tc.wantTotal, fmt.Sprintf("gr-%d", i+1), "CS101", false, now, now)
			}
			eq.WillReturnRows(r)

			graphs, total, err := queryListGraphs(context.Background(), db, tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(graphs) != tc.wantCount {
				t.Fatalf("expected %d graphs, got %d", tc.wantCount, len(graphs))
			}
			if total != tc.wantTotal {
				t.Fatalf("expected total=%d, got %d", tc.wantTotal, total)
			}
		})
	}
}

func TestQueryUpdateGraph(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	g := &model.Graph{ID: "gr-test1", CourseID: "CS101", IsPrototype: true}
	mock.ExpectQuery("UPDATE graphs SET").
		WithArgs("gr-test1", "CS101", true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	if err := queryUpdateGraph(context.Background(), db, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at to be refreshed, got %v", g.UpdatedAt)
	}
}

func TestQueryUpdateGraph_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	g := &model.Graph{ID: "nonexistent", CourseID: "CS101"}
	mock.ExpectQuery("UPDATE graphs SET").
		WithArgs("nonexistent", "CS101", false).
		WillReturnError(sql.ErrNoRows)

	if err := queryUpdateGraph(context.Background(), db, g); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryDeleteGraph(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM graphs WHERE id = \\$1").WithArgs("gr-del1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteGraph(context.Background(), db, "gr-del1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteGraph_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM graphs WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteGraph(context.Background(), db, "nonexistent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryCreateNode(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	n := &model.Node{
		ID: "nd-test1", GraphID: "gr-test1", Title: "Recursion",
		MasteryPoints: 10, Metadata: json.RawMessage(`{"difficulty":"hard"}`),
		CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectExec("INSERT INTO nodes").
		WithArgs("nd-test1", "gr-test1", "Recursion", "", 10, []byte(`{"difficulty":"hard"}`), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateNode(context.Background(), db, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryGetNode(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(nodeRowColumns).
		AddRow("nd-test1", "gr-test1", "Recursion", "Base cases and all that", 10, []byte(`{"a":1}`), now, now)
	mock.ExpectQuery("SELECT .+ FROM nodes WHERE id = \\$1").WithArgs("nd-test1").WillReturnRows(rows)

	n, err := queryGetNode(context.Background(), db, "nd-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.ID != "nd-test1" || n.GraphID != "gr-test1" || n.MasteryPoints != 10 {
		t.Fatalf("got id=%q graph_id=%q mastery_points=%d", n.ID, n.GraphID, n.MasteryPoints)
	}
	if string(n.Metadata) != `{"a":1}` {
		t.Fatalf("got metadata=%s", n.Metadata)
	}
}

func TestQueryGetNode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM nodes WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetNode(context.Background(), db, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryListNodes(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(nodeRowColumns).
		AddRow("nd-a", "gr-test1", "A", "", 0, nil, now, now).
		AddRow("nd-b", "gr-test1", "B", "", 5, nil, now, now)
	mock.ExpectQuery("SELECT .+ FROM nodes WHERE graph_id = \\$1").WithArgs("gr-test1").WillReturnRows(rows)

	nodes, err := queryListNodes(context.Background(), db, "gr-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != "nd-a" || nodes[1].MasteryPoints != 5 {
		t.Fatalf("got nodes[0].ID=%q nodes[1].MasteryPoints=%d", nodes[0].ID, nodes[1].MasteryPoints)
	}
}

func TestQueryUpdateNode(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	n := &model.Node{ID: "nd-test1", GraphID: "gr-test1", Title: "Updated", MasteryPoints: 3}
	mock.ExpectQuery("UPDATE nodes SET").
		WithArgs("nd-test1", "Updated", "", 3, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	if err := queryUpdateNode(context.Background(), db, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryUpdateNode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	n := &model.Node{ID: "nonexistent"}
	mock.ExpectQuery("UPDATE nodes SET").
		WithArgs("nonexistent", "", "", 0, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	if err := queryUpdateNode(context.Background(), db, n); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryDeleteNode(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM nodes WHERE id = \\$1").WithArgs("nd-del1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteNode(context.Background(), db, "nd-del1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteNode_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM nodes WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteNode(context.Background(), db, "nonexistent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryCreateEdge(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	e := &model.Edge{
		ID: "ed-test1", GraphID: "gr-test1", FromNodeID: "nd-a", ToNodeID: "nd-b",
		Type: model.EdgePrerequisite, CreatedAt: now,
	}
	mock.ExpectExec("INSERT INTO edges").
		WithArgs("ed-test1", "gr-test1", "nd-a", "nd-b", "prerequisite", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateEdge(context.Background(), db, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryCreateEdge_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	e := &model.Edge{
		ID: "ed-test2", GraphID: "gr-test1", FromNodeID: "nd-a", ToNodeID: "nd-b",
		Type: model.EdgePrerequisite, CreatedAt: now,
	}
	mock.ExpectExec("INSERT INTO edges").
		WithArgs("ed-test2", "gr-test1", "nd-a", "nd-b", "prerequisite", sqlmock.AnyArg(), now).
		WillReturnError(&pq.Error{Code: "23505"})

	err := queryCreateEdge(context.Background(), db, e)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected store.ErrDuplicate, got %v", err)
	}
}

func TestQueryGetEdge(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	rows := sqlmock.NewRows(edgeRowColumns).
		AddRow("ed-test1", "gr-test1", "nd-a", "nd-b", "sub-topic", nil, now)
	mock.ExpectQuery("SELECT .+ FROM edges WHERE id = \\$1").WithArgs("ed-test1").WillReturnRows(rows)

	e, err := queryGetEdge(context.Background(), db, "ed-test1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Type != model.EdgeSubTopic || e.FromNodeID != "nd-a" {
		t.Fatalf("got type=%q from=%q", e.Type, e.FromNodeID)
	}
}

func TestQueryGetEdge_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM edges WHERE id = \\$1").WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetEdge(context.Background(), db, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQueryListEdges(t *testing.T) {
	now := time.Now().UTC()

	for _, tc := range []struct {
		name      string
		filter    model.EdgeFilter
		queryPat  string
		args      []driver.Value
		wantCount int
	}{
		{
			name:      "NoFilter",
			filter:    model.EdgeFilter{},
			queryPat:  "SELECT .+ FROM edges WHERE graph_id = \\$1 ORDER BY created_at ASC",
			args:      []driver.Value{"gr-test1"},
			wantCount: 2,
		},
		{
			name:      "FilterByType",
			filter:    model.EdgeFilter{Type: model.EdgePrerequisite},
			queryPat:  "SELECT .+ FROM edges WHERE graph_id = \\$1 AND type = \\$2 ORDER BY",
			args:      []driver.Value{"gr-test1", "prerequisite"},
			wantCount: 1,
		},
		{
			name:      "FilterByEndpoints",
			filter:    model.EdgeFilter{FromNodeID: "nd-a", ToNodeID: "nd-b"},
			queryPat:  "SELECT .+ FROM edges WHERE graph_id = \\$1 AND from_node_id = \\$2 AND to_node_id = \\$3 ORDER BY",
			args:      []driver.Value{"gr-test1", "nd-a", "nd-b"},
			wantCount: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			r := sqlmock.NewRows(edgeRowColumns)
			for i := range tc.wantCount {
				r.AddRow(fmt.Sprintf("ed-%d", i+1), "gr-test1", "nd-a", "nd-b", "prerequisite", nil, now)
			}
			mock.ExpectQuery(tc.queryPat).WithArgs(tc.args...).WillReturnRows(r)

			edges, err := queryListEdges(context.Background(), db, "gr-test1", tc.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(edges) != tc.wantCount {
				t.Fatalf("expected %d edges, got %d", tc.wantCount, len(edges))
			}
		})
	}
}

func TestQueryDeleteEdge(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").WithArgs("ed-del1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryDeleteEdge(context.Background(), db, "ed-del1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryDeleteEdge_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryDeleteEdge(context.Background(), db, "nonexistent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").WithArgs("ed-tx1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteEdge(context.Background(), "ed-tx1")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").WithArgs("nonexistent").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.DeleteEdge(context.Background(), "nonexistent")
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound from inside the transaction, got %v", err)
	}
}

func TestTxStore_ReusesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").WithArgs("ed-nested").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		// Nested RunInTransaction must not open a second transaction.
		return tx.RunInTransaction(context.Background(), func(inner store.Store) error {
			return inner.DeleteEdge(context.Background(), "ed-nested")
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
