package graphs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/idgen"
	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// CreateEdgeInput holds transport-agnostic parameters for linking two nodes.
type CreateEdgeInput struct {
	GraphID    string          `json:"graph_id"`
	FromNodeID string          `json:"from_node_id"`
	ToNodeID   string          `json:"to_node_id"`
	Type       model.EdgeType  `json:"type"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// CreateEdge links two nodes of one graph with a typed directed edge.
// Checks run in a fixed order: graph, from-node, to-node, self-loop,
// edge type, then duplicate pair.
func (s *Service) CreateEdge(ctx context.Context, in CreateEdgeInput) (*model.Edge, error) {
	if in.FromNodeID == "" {
		return nil, inputError("from_node_id is required")
	}
	if in.ToNodeID == "" {
		return nil, inputError("to_node_id is required")
	}

	id, err := idgen.NewEdgeID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	var edge *model.Edge
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := requireGraph(ctx, tx, in.GraphID); err != nil {
			return err
		}
		if _, err := requireNode(ctx, tx, in.GraphID, in.FromNodeID); err != nil {
			return err
		}
		if _, err := requireNode(ctx, tx, in.GraphID, in.ToNodeID); err != nil {
			return err
		}
		if in.FromNodeID == in.ToNodeID {
			return inputError("self-loop: from_node_id and to_node_id must differ")
		}
		if !in.Type.IsValid() {
			return inputError(fmt.Sprintf("invalid edge type %q", in.Type))
		}

		e := &model.Edge{
			ID:         id,
			GraphID:    in.GraphID,
			FromNodeID: in.FromNodeID,
			ToNodeID:   in.ToNodeID,
			Type:       in.Type,
			CreatedAt:  time.Now().UTC(),
		}
		if len(in.Metadata) > 0 {
			e.Metadata = in.Metadata
		}
		if err := model.ValidateEdge(e); err != nil {
			return inputErrorFrom(err)
		}

		existing, err := tx.ListEdges(ctx, in.GraphID, model.EdgeFilter{
			Type:       in.Type,
			FromNodeID: in.FromNodeID,
			ToNodeID:   in.ToNodeID,
		})
		if err != nil {
			return fmt.Errorf("check duplicate edge: %w", err)
		}
		if len(existing) > 0 {
			return conflictError("edge", existing[0].ID,
				fmt.Sprintf("%s edge %s -> %s already exists", in.Type, in.FromNodeID, in.ToNodeID))
		}

		if err := tx.CreateEdge(ctx, e); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflictError("edge", e.ID,
					fmt.Sprintf("%s edge %s -> %s already exists", in.Type, in.FromNodeID, in.ToNodeID))
			}
			return fmt.Errorf("create edge: %w", err)
		}
		edge = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEdgeCreated, events.EdgeCreated{Edge: edge})
	return edge, nil
}

// DeleteEdgeInput identifies an edge to remove: either directly by EdgeID,
// or by its ordered endpoint pair with Type as an optional discriminator.
type DeleteEdgeInput struct {
	GraphID    string         `json:"graph_id"`
	EdgeID     string         `json:"edge_id,omitempty"`
	FromNodeID string         `json:"from_node_id,omitempty"`
	ToNodeID   string         `json:"to_node_id,omitempty"`
	Type       model.EdgeType `json:"type,omitempty"`
}

// DeleteEdgeResult reports the removed edge.
type DeleteEdgeResult struct {
	EdgeID     string         `json:"edge_id"`
	FromNodeID string         `json:"from_node_id"`
	ToNodeID   string         `json:"to_node_id"`
	Type       model.EdgeType `json:"type"`
}

// DeleteEdge removes one edge. When addressed by endpoint pair and no
// type is given, the delete succeeds only if exactly one edge connects
// the pair; an ambiguous match is rejected rather than resolved
// arbitrarily.
func (s *Service) DeleteEdge(ctx context.Context, in DeleteEdgeInput) (*DeleteEdgeResult, error) {
	var result *DeleteEdgeResult
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := requireGraph(ctx, tx, in.GraphID); err != nil {
			return err
		}

		var target *model.Edge
		if in.EdgeID != "" {
			e, err := requireEdge(ctx, tx, in.GraphID, in.EdgeID)
			if err != nil {
				return err
			}
			if in.FromNodeID != "" && e.FromNodeID != in.FromNodeID {
				return inputError(fmt.Sprintf("edge %s does not start at %s", e.ID, in.FromNodeID))
			}
			if in.ToNodeID != "" && e.ToNodeID != in.ToNodeID {
				return inputError(fmt.Sprintf("edge %s does not end at %s", e.ID, in.ToNodeID))
			}
			if in.Type != "" && e.Type != in.Type {
				return inputError(fmt.Sprintf("edge %s is not of type %s", e.ID, in.Type))
			}
			target = e
		} else {
			if in.FromNodeID == "" {
				return inputError("from_node_id is required")
			}
			if in.ToNodeID == "" {
				return inputError("to_node_id is required")
			}
			if in.Type != "" && !in.Type.IsValid() {
				return inputError(fmt.Sprintf("invalid edge type %q", in.Type))
			}

			matches, err := tx.ListEdges(ctx, in.GraphID, model.EdgeFilter{
				Type:       in.Type,
				FromNodeID: in.FromNodeID,
				ToNodeID:   in.ToNodeID,
			})
			if err != nil {
				return fmt.Errorf("match edges: %w", err)
			}
			switch {
			case len(matches) == 0:
				return notConnectedError(in.FromNodeID, in.ToNodeID)
			case len(matches) > 1:
				return inputError(fmt.Sprintf(
					"%d edges connect %s -> %s; supply an edge_type or edge_id",
					len(matches), in.FromNodeID, in.ToNodeID))
			}
			target = matches[0]
		}

		if err := tx.DeleteEdge(ctx, target.ID); err != nil {
			return fmt.Errorf("delete edge %s: %w", target.ID, err)
		}
		result = &DeleteEdgeResult{
			EdgeID:     target.ID,
			FromNodeID: target.FromNodeID,
			ToNodeID:   target.ToNodeID,
			Type:       target.Type,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicEdgeDeleted, events.EdgeDeleted{
		GraphID:    in.GraphID,
		EdgeID:     result.EdgeID,
		FromNodeID: result.FromNodeID,
		ToNodeID:   result.ToNodeID,
		Type:       result.Type,
	})
	return result, nil
}
