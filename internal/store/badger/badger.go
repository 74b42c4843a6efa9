// Package badger implements the store.Store interface backed by an
// embedded BadgerDB database. It is the default backend for local use:
// no server, one directory on disk, and an in-memory mode for tests.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// Config holds options for opening a BadgerStore.
type Config struct {
	Path     string       // directory for database files; ignored when InMemory is set
	InMemory bool         // keep all data in memory, used by tests
	Logger   *slog.Logger // optional; badger's own logging is disabled when nil
}

// BadgerStore implements store.Store backed by a BadgerDB database.
type BadgerStore struct {
	db *badger.DB

	// writeMu serializes read-write transactions. Badger aborts
	// conflicting commits with ErrConflict; callers expect transactional
	// isolation, not retry loops.
	writeMu sync.Mutex
}

// Compile-time check that BadgerStore implements store.Store.
var _ store.Store = (*BadgerStore)(nil)

// Open opens a BadgerDB database with the given configuration, creating
// the data directory if needed.
func Open(cfg Config) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger: path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&slogAdapter{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// slogAdapter adapts slog.Logger to badger's Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (l *slogAdapter) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *slogAdapter) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// update runs fn in a serialized read-write transaction.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.db.Update(fn)
}

// view runs fn in a read-only transaction.
func (s *BadgerStore) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *BadgerStore) CreateGraph(ctx context.Context, g *model.Graph) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txCreateGraph(txn, g)
	})
}

func (s *BadgerStore) GetGraph(ctx context.Context, id string) (*model.Graph, error) {
	var g *model.Graph
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		g, err = txGetGraph(txn, id)
		return err
	})
	return g, err
}

func (s *BadgerStore) ListGraphs(ctx context.Context, filter model.GraphFilter) ([]*model.Graph, int, error) {
	var (
		graphs []*model.Graph
		total  int
	)
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		graphs, total, err = txListGraphs(txn, filter)
		return err
	})
	return graphs, total, err
}

func (s *BadgerStore) UpdateGraph(ctx context.Context, g *model.Graph) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txUpdateGraph(txn, g)
	})
}

func (s *BadgerStore) DeleteGraph(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txDeleteGraph(txn, id)
	})
}

func (s *BadgerStore) CreateNode(ctx context.Context, n *model.Node) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txCreateNode(txn, n)
	})
}

func (s *BadgerStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	var n *model.Node
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		n, err = txGetNode(txn, id)
		return err
	})
	return n, err
}

func (s *BadgerStore) ListNodes(ctx context.Context, graphID string) ([]*model.Node, error) {
	var nodes []*model.Node
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		nodes, err = txListNodes(txn, graphID)
		return err
	})
	return nodes, err
}

func (s *BadgerStore) UpdateNode(ctx context.Context, n *model.Node) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txUpdateNode(txn, n)
	})
}

func (s *BadgerStore) DeleteNode(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txDeleteNode(txn, id)
	})
}

func (s *BadgerStore) CreateEdge(ctx context.Context, e *model.Edge) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txCreateEdge(txn, e)
	})
}

func (s *BadgerStore) GetEdge(ctx context.Context, id string) (*model.Edge, error) {
	var e *model.Edge
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		e, err = txGetEdge(txn, id)
		return err
	})
	return e, err
}

func (s *BadgerStore) ListEdges(ctx context.Context, graphID string, filter model.EdgeFilter) ([]*model.Edge, error) {
	var edges []*model.Edge
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		edges, err = txListEdges(txn, graphID, filter)
		return err
	})
	return edges, err
}

func (s *BadgerStore) DeleteEdge(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txDeleteEdge(txn, id)
	})
}

// RunInTransaction runs fn against a txStore bound to a single badger
// transaction; the whole transaction commits on success or is discarded
// on error.
func (s *BadgerStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return fn(&txStore{txn: txn})
	})
}

// txStore implements store.Store using a single *badger.Txn.
type txStore struct {
	txn *badger.Txn
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateGraph(ctx context.Context, g *model.Graph) error {
	return txCreateGraph(s.txn, g)
}

func (s *txStore) GetGraph(ctx context.Context, id string) (*model.Graph, error) {
	return txGetGraph(s.txn, id)
}

func (s *txStore) ListGraphs(ctx context.Context, filter model.GraphFilter) ([]*model.Graph, int, error) {
	return txListGraphs(s.txn, filter)
}

func (s *txStore) UpdateGraph(ctx context.Context, g *model.Graph) error {
	return txUpdateGraph(s.txn, g)
}

func (s *txStore) DeleteGraph(ctx context.Context, id string) error {
	return txDeleteGraph(s.txn, id)
}

func (s *txStore) CreateNode(ctx context.Context, n *model.Node) error {
	return txCreateNode(s.txn, n)
}

func (s *txStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return txGetNode(s.txn, id)
}

func (s *txStore) ListNodes(ctx context.Context, graphID string) ([]*model.Node, error) {
	return txListNodes(s.txn, graphID)
}

func (s *txStore) UpdateNode(ctx context.Context, n *model.Node) error {
	return txUpdateNode(s.txn, n)
}

func (s *txStore) DeleteNode(ctx context.Context, id string) error {
	return txDeleteNode(s.txn, id)
}

func (s *txStore) CreateEdge(ctx context.Context, e *model.Edge) error {
	return txCreateEdge(s.txn, e)
}

func (s *txStore) GetEdge(ctx context.Context, id string) (*model.Edge, error) {
	return txGetEdge(s.txn, id)
}

func (s *txStore) ListEdges(ctx context.Context, graphID string, filter model.EdgeFilter) ([]*model.Edge, error) {
	return txListEdges(s.txn, graphID, filter)
}

func (s *txStore) DeleteEdge(ctx context.Context, id string) error {
	return txDeleteEdge(s.txn, id)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the database.
func (s *txStore) Close() error {
	return nil
}
