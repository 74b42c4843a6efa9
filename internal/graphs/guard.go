package graphs

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// The require* functions are the ownership guard: the single code path
// every operation goes through before touching an entity addressed by id.
// Existence and ownership are checked separately so callers can tell
// "no such node" apart from "not your node". Call sites must not
// re-implement these checks.

func requireGraph(ctx context.Context, st store.Store, graphID string) (*model.Graph, error) {
	if graphID == "" {
		return nil, inputError("graph_id is required")
	}
	g, err := st.GetGraph(ctx, graphID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("graph", graphID)
		}
		return nil, fmt.Errorf("get graph %s: %w", graphID, err)
	}
	return g, nil
}

func requireNode(ctx context.Context, st store.Store, graphID, nodeID string) (*model.Node, error) {
	if graphID == "" {
		return nil, inputError("graph_id is required")
	}
	if nodeID == "" {
		return nil, inputError("node_id is required")
	}
	n, err := st.GetNode(ctx, nodeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("node", nodeID)
		}
		return nil, fmt.Errorf("get node %s: %w", nodeID, err)
	}
	if n.GraphID != graphID {
		return nil, isolationError("node", nodeID, graphID)
	}
	return n, nil
}

func requireEdge(ctx context.Context, st store.Store, graphID, edgeID string) (*model.Edge, error) {
	if graphID == "" {
		return nil, inputError("graph_id is required")
	}
	if edgeID == "" {
		return nil, inputError("edge_id is required")
	}
	e, err := st.GetEdge(ctx, edgeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundError("edge", edgeID)
		}
		return nil, fmt.Errorf("get edge %s: %w", edgeID, err)
	}
	if e.GraphID != graphID {
		return nil, isolationError("edge", edgeID, graphID)
	}
	return e, nil
}
