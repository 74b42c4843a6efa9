package graphs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/idgen"
	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// CreateNodeInput holds transport-agnostic parameters for creating a node.
type CreateNodeInput struct {
	GraphID       string          `json:"graph_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	MasteryPoints int             `json:"mastery_points"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// CreateNode creates a node inside an existing graph. MasteryPoints
// defaults to zero.
func (s *Service) CreateNode(ctx context.Context, in CreateNodeInput) (*model.Node, error) {
	id, err := idgen.NewNodeID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	n := &model.Node{
		ID:            id,
		GraphID:       in.GraphID,
		Title:         in.Title,
		Description:   in.Description,
		MasteryPoints: in.MasteryPoints,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(in.Metadata) > 0 {
		n.Metadata = in.Metadata
	}
	if err := model.ValidateNode(n); err != nil {
		return nil, inputErrorFrom(err)
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := requireGraph(ctx, tx, in.GraphID); err != nil {
			return err
		}
		if err := tx.CreateNode(ctx, n); err != nil {
			return fmt.Errorf("create node: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicNodeCreated, events.NodeCreated{Node: n})
	return n, nil
}

// GetNode returns one node addressed through its graph. A node that
// exists under a different graph is an isolation violation, not a miss.
func (s *Service) GetNode(ctx context.Context, graphID, nodeID string) (*model.Node, error) {
	return requireNode(ctx, s.store, graphID, nodeID)
}

// UpdateNodeInput holds a partial node update. Nil fields are untouched;
// Metadata is merged key-by-key into the stored bag.
type UpdateNodeInput struct {
	GraphID       string          `json:"graph_id"`
	NodeID        string          `json:"node_id"`
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	MasteryPoints *int            `json:"mastery_points,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// UpdateNode applies a partial update and refreshes updated_at.
func (s *Service) UpdateNode(ctx context.Context, in UpdateNodeInput) (*model.Node, error) {
	var (
		node    *model.Node
		changes = make(map[string]any)
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		n, err := requireNode(ctx, tx, in.GraphID, in.NodeID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			n.Title = *in.Title
			changes["title"] = n.Title
		}
		if in.Description != nil {
			n.Description = *in.Description
			changes["description"] = n.Description
		}
		if in.MasteryPoints != nil {
			n.MasteryPoints = *in.MasteryPoints
			changes["mastery_points"] = n.MasteryPoints
		}
		if len(in.Metadata) > 0 {
			merged, err := mergeMetadata(n.Metadata, in.Metadata)
			if err != nil {
				return err
			}
			n.Metadata = merged
			changes["metadata"] = n.Metadata
		}

		if err := model.ValidateNode(n); err != nil {
			return inputErrorFrom(err)
		}
		if err := tx.UpdateNode(ctx, n); err != nil {
			return fmt.Errorf("update node %s: %w", n.ID, err)
		}
		node = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicNodeUpdated, events.NodeUpdated{Node: node, Changes: changes})
	return node, nil
}

// reservedMetadataKeys are identity fields that may never be smuggled in
// through the metadata bag.
var reservedMetadataKeys = []string{"node_id", "graph_id"}

// mergeMetadata merges patch keys into the stored bag (patch semantics:
// supplied keys overwrite, omitted keys are untouched).
func mergeMetadata(stored, patch json.RawMessage) (json.RawMessage, error) {
	var patchMap map[string]any
	if err := json.Unmarshal(patch, &patchMap); err != nil {
		return nil, inputError("metadata patch must be a JSON object")
	}
	for _, key := range reservedMetadataKeys {
		if _, ok := patchMap[key]; ok {
			return nil, inputError(fmt.Sprintf("metadata key %q is reserved", key))
		}
	}

	merged := make(map[string]any)
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &merged); err != nil {
			return nil, fmt.Errorf("decode stored metadata: %w", err)
		}
	}
	for k, v := range patchMap {
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("merge metadata: %w", err)
	}
	return out, nil
}

// DeleteNodeResult reports a node removal and its edge cascade.
type DeleteNodeResult struct {
	NodeID         string   `json:"node_id"`
	DeletedEdgeIDs []string `json:"deleted_edge_ids"`
}

// DeleteNode removes a node and every edge touching it, atomically. The
// incident edge set is collected first, then applied, so a failure part
// way through rolls the whole cascade back.
func (s *Service) DeleteNode(ctx context.Context, graphID, nodeID string) (*DeleteNodeResult, error) {
	var result *DeleteNodeResult
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		n, err := requireNode(ctx, tx, graphID, nodeID)
		if err != nil {
			return err
		}

		outgoing, err := tx.ListEdges(ctx, graphID, model.EdgeFilter{FromNodeID: n.ID})
		if err != nil {
			return fmt.Errorf("list outgoing edges: %w", err)
		}
		incoming, err := tx.ListEdges(ctx, graphID, model.EdgeFilter{ToNodeID: n.ID})
		if err != nil {
			return fmt.Errorf("list incoming edges: %w", err)
		}

		// Self-loops are rejected at creation, so the two sets are disjoint.
		edgeIDs := make([]string, 0, len(outgoing)+len(incoming))
		for _, e := range outgoing {
			edgeIDs = append(edgeIDs, e.ID)
		}
		for _, e := range incoming {
			edgeIDs = append(edgeIDs, e.ID)
		}

		for _, id := range edgeIDs {
			if err := tx.DeleteEdge(ctx, id); err != nil {
				return fmt.Errorf("delete edge %s: %w", id, err)
			}
		}
		if err := tx.DeleteNode(ctx, n.ID); err != nil {
			return fmt.Errorf("delete node %s: %w", n.ID, err)
		}

		result = &DeleteNodeResult{NodeID: n.ID, DeletedEdgeIDs: edgeIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicNodeDeleted, events.NodeDeleted{
		GraphID:        graphID,
		NodeID:         result.NodeID,
		DeletedEdgeIDs: result.DeletedEdgeIDs,
	})
	return result, nil
}
