package graphs

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/idgen"
	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// CopyResult reports a whole-graph duplication.
type CopyResult struct {
	Graph       *model.Graph `json:"graph"`
	NodesCopied int          `json:"nodes_copied"`
	EdgesCopied int          `json:"edges_copied"`
}

// CopyGraph duplicates a graph under fresh identifiers: a new graph
// record with the same course_id (the one sanctioned course_id sharing
// path), every node copied through an old-to-new id mapping, and every
// edge translated through that mapping. The copy is all-or-nothing; a
// failure at any step leaves no partial graph behind.
func (s *Service) CopyGraph(ctx context.Context, sourceGraphID string) (*CopyResult, error) {
	newGraphID, err := idgen.NewGraphID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	var result *CopyResult
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		src, err := requireGraph(ctx, tx, sourceGraphID)
		if err != nil {
			return err
		}
		nodes, err := tx.ListNodes(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("list source nodes: %w", err)
		}
		edges, err := tx.ListEdges(ctx, src.ID, model.EdgeFilter{})
		if err != nil {
			return fmt.Errorf("list source edges: %w", err)
		}

		now := time.Now().UTC()
		copied := &model.Graph{
			ID:        newGraphID,
			CourseID:  src.CourseID,
			CreatedAt: now,
			UpdatedAt: now,
			// IsPrototype stays false: a copy is a working instance.
		}
		if err := tx.CreateGraph(ctx, copied); err != nil {
			return fmt.Errorf("create graph copy: %w", err)
		}

		// Remap node identifiers, then translate edges through the
		// mapping. Entity timestamps carry over so copied content keeps
		// its ordering; only identity fields change.
		idMap := make(map[string]string, len(nodes))
		for _, n := range nodes {
			newID, err := idgen.NewNodeID()
			if err != nil {
				return fmt.Errorf("failed to generate ID: %w", err)
			}
			idMap[n.ID] = newID

			cn := *n
			cn.ID = newID
			cn.GraphID = newGraphID
			if err := tx.CreateNode(ctx, &cn); err != nil {
				return fmt.Errorf("copy node %s: %w", n.ID, err)
			}
		}
		for _, e := range edges {
			newID, err := idgen.NewEdgeID()
			if err != nil {
				return fmt.Errorf("failed to generate ID: %w", err)
			}
			from, ok := idMap[e.FromNodeID]
			if !ok {
				return fmt.Errorf("edge %s references unknown node %s", e.ID, e.FromNodeID)
			}
			to, ok := idMap[e.ToNodeID]
			if !ok {
				return fmt.Errorf("edge %s references unknown node %s", e.ID, e.ToNodeID)
			}

			ce := *e
			ce.ID = newID
			ce.GraphID = newGraphID
			ce.FromNodeID = from
			ce.ToNodeID = to
			if err := tx.CreateEdge(ctx, &ce); err != nil {
				return fmt.Errorf("copy edge %s: %w", e.ID, err)
			}
		}

		result = &CopyResult{Graph: copied, NodesCopied: len(nodes), EdgesCopied: len(edges)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicGraphCopied, events.GraphCopied{
		SourceGraphID: sourceGraphID,
		Graph:         result.Graph,
		NodesCopied:   result.NodesCopied,
		EdgesCopied:   result.EdgesCopied,
	})
	return result, nil
}

// DeleteResult reports a whole-graph teardown.
type DeleteResult struct {
	GraphID      string `json:"graph_id"`
	NodesDeleted int    `json:"nodes_deleted"`
	EdgesDeleted int    `json:"edges_deleted"`
}

// DeleteGraph removes a graph and everything it owns, atomically: edges
// first, then nodes, then the graph record. Returns pre-deletion counts.
func (s *Service) DeleteGraph(ctx context.Context, graphID string) (*DeleteResult, error) {
	var result *DeleteResult
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		g, err := requireGraph(ctx, tx, graphID)
		if err != nil {
			return err
		}
		nodes, err := tx.ListNodes(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("list nodes: %w", err)
		}
		edges, err := tx.ListEdges(ctx, g.ID, model.EdgeFilter{})
		if err != nil {
			return fmt.Errorf("list edges: %w", err)
		}

		for _, e := range edges {
			if err := tx.DeleteEdge(ctx, e.ID); err != nil {
				return fmt.Errorf("delete edge %s: %w", e.ID, err)
			}
		}
		for _, n := range nodes {
			if err := tx.DeleteNode(ctx, n.ID); err != nil {
				return fmt.Errorf("delete node %s: %w", n.ID, err)
			}
		}
		if err := tx.DeleteGraph(ctx, g.ID); err != nil {
			return fmt.Errorf("delete graph %s: %w", g.ID, err)
		}

		result = &DeleteResult{GraphID: g.ID, NodesDeleted: len(nodes), EdgesDeleted: len(edges)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicGraphDeleted, events.GraphDeleted{
		GraphID:      result.GraphID,
		NodesDeleted: result.NodesDeleted,
		EdgesDeleted: result.EdgesDeleted,
	})
	return result, nil
}
