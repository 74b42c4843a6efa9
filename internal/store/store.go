package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/lattice/internal/model"
)

// Sentinel errors shared by every backend. The engine maps them onto the
// caller-facing error taxonomy; backends must return these (wrapped is
// fine) rather than inventing their own.
var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Store defines the persistence interface for graphs, nodes, and edges.
// It is deliberately narrow: per-key CRUD, graph-scoped scans, and
// transactions. Multi-entity invariants (isolation, cascades, copy) live
// in the engine, which composes these primitives inside RunInTransaction.
type Store interface {
	// Graphs
	CreateGraph(ctx context.Context, g *model.Graph) error
	GetGraph(ctx context.Context, id string) (*model.Graph, error)
	ListGraphs(ctx context.Context, filter model.GraphFilter) ([]*model.Graph, int, error) // returns graphs, total count, error
	UpdateGraph(ctx context.Context, g *model.Graph) error
	DeleteGraph(ctx context.Context, id string) error

	// Nodes
	CreateNode(ctx context.Context, n *model.Node) error
	GetNode(ctx context.Context, id string) (*model.Node, error)
	ListNodes(ctx context.Context, graphID string) ([]*model.Node, error)
	UpdateNode(ctx context.Context, n *model.Node) error
	DeleteNode(ctx context.Context, id string) error

	// Edges
	CreateEdge(ctx context.Context, e *model.Edge) error
	GetEdge(ctx context.Context, id string) (*model.Edge, error)
	ListEdges(ctx context.Context, graphID string, filter model.EdgeFilter) ([]*model.Edge, error)
	DeleteEdge(ctx context.Context, id string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
