// Package graphs implements the curriculum graph engine: the graph
// registry, node and edge operations behind a single ownership guard,
// whole-graph copy and delete, and the traversal queries. Every mutation
// runs inside one store transaction; partial effects are never visible.
package graphs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/idgen"
	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// Service is the operation surface consumed by transports (CLI, HTTP).
// It owns no state beyond its collaborators and is safe for concurrent use.
type Service struct {
	store     store.Store
	publisher events.Publisher
}

// NewService returns a Service backed by the given store and publisher.
// A nil publisher disables event emission.
func NewService(st store.Store, pub events.Publisher) *Service {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Service{store: st, publisher: pub}
}

// publish emits an event after a successful mutation. Best-effort:
// failures are logged and never fail the operation.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// CreateGraphInput holds transport-agnostic parameters for creating a graph.
type CreateGraphInput struct {
	CourseID string `json:"course_id"`
}

// CreateGraph creates an empty graph for a course. The course_id must not
// be in use by any existing graph; copies are the only sanctioned way to
// have two graphs share a course_id.
func (s *Service) CreateGraph(ctx context.Context, in CreateGraphInput) (*model.Graph, error) {
	id, err := idgen.NewGraphID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	g := &model.Graph{
		ID:        id,
		CourseID:  in.CourseID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidateGraph(g); err != nil {
		return nil, inputErrorFrom(err)
	}

	// The uniqueness check and the insert share one transaction so two
	// concurrent creations with the same course_id cannot both pass.
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		existing, total, err := tx.ListGraphs(ctx, model.GraphFilter{CourseID: g.CourseID, Limit: 1})
		if err != nil {
			return fmt.Errorf("check course_id %s: %w", g.CourseID, err)
		}
		if total > 0 {
			return conflictError("course", g.CourseID,
				fmt.Sprintf("course_id %s already in use by graph %s", g.CourseID, existing[0].ID))
		}
		if err := tx.CreateGraph(ctx, g); err != nil {
			return fmt.Errorf("create graph: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicGraphCreated, events.GraphCreated{Graph: g})
	return g, nil
}

// GetGraph returns one graph by id.
func (s *Service) GetGraph(ctx context.Context, graphID string) (*model.Graph, error) {
	return requireGraph(ctx, s.store, graphID)
}

// ListGraphsInput filters and pages a graph listing.
type ListGraphsInput struct {
	CourseID  string `json:"course_id,omitempty"`
	Prototype *bool  `json:"prototype,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// ListGraphs returns matching graphs and the total match count before paging.
func (s *Service) ListGraphs(ctx context.Context, in ListGraphsInput) ([]*model.Graph, int, error) {
	if in.Limit < 0 || in.Offset < 0 {
		return nil, 0, inputError("limit and offset must be non-negative")
	}
	graphs, total, err := s.store.ListGraphs(ctx, model.GraphFilter{
		CourseID:  in.CourseID,
		Prototype: in.Prototype,
		Limit:     in.Limit,
		Offset:    in.Offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list graphs: %w", err)
	}
	return graphs, total, nil
}

// UpdateGraphInput holds the mutable graph fields. graph_id and course_id
// are immutable; supplying a different course_id is rejected.
type UpdateGraphInput struct {
	GraphID     string `json:"graph_id"`
	CourseID    string `json:"course_id,omitempty"`
	IsPrototype *bool  `json:"is_prototype,omitempty"`
}

// UpdateGraph applies a partial update to graph metadata and refreshes
// updated_at when anything changed.
func (s *Service) UpdateGraph(ctx context.Context, in UpdateGraphInput) (*model.Graph, error) {
	var (
		graph   *model.Graph
		changes = make(map[string]any)
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		g, err := requireGraph(ctx, tx, in.GraphID)
		if err != nil {
			return err
		}
		if in.CourseID != "" && in.CourseID != g.CourseID {
			return inputError("course_id is immutable")
		}
		if in.IsPrototype != nil && *in.IsPrototype != g.IsPrototype {
			g.IsPrototype = *in.IsPrototype
			changes["is_prototype"] = g.IsPrototype
		}
		if len(changes) == 0 {
			graph = g
			return nil
		}
		if err := tx.UpdateGraph(ctx, g); err != nil {
			return fmt.Errorf("update graph %s: %w", g.ID, err)
		}
		graph = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		s.publish(ctx, events.TopicGraphUpdated, events.GraphUpdated{Graph: graph, Changes: changes})
	}
	return graph, nil
}

// Stats returns node, edge, and mastery-point totals for one graph.
func (s *Service) Stats(ctx context.Context, graphID string) (*model.GraphStats, error) {
	if _, err := requireGraph(ctx, s.store, graphID); err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	edges, err := s.store.ListEdges(ctx, graphID, model.EdgeFilter{})
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}

	stats := &model.GraphStats{
		GraphID:     graphID,
		Nodes:       len(nodes),
		Edges:       len(edges),
		EdgesByType: make(map[string]int),
	}
	for _, n := range nodes {
		stats.MasteryPoints += n.MasteryPoints
	}
	for _, e := range edges {
		stats.EdgesByType[string(e.Type)]++
	}
	return stats, nil
}

// ListNodes returns all nodes of one graph, oldest first.
func (s *Service) ListNodes(ctx context.Context, graphID string) ([]*model.Node, error) {
	if _, err := requireGraph(ctx, s.store, graphID); err != nil {
		return nil, err
	}
	nodes, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return nodes, nil
}

// ListEdges returns edges of one graph matching the filter, oldest first.
func (s *Service) ListEdges(ctx context.Context, graphID string, filter model.EdgeFilter) ([]*model.Edge, error) {
	if _, err := requireGraph(ctx, s.store, graphID); err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, inputError(fmt.Sprintf("invalid edge type %q", filter.Type))
	}
	edges, err := s.store.ListEdges(ctx, graphID, filter)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return edges, nil
}
