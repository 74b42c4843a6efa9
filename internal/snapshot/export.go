// Package snapshot exports graph content as JSONL: one header record
// followed by typed graph, node, and edge records. Snapshots are one-way
// artifacts for backup and inspection; nothing reads them back into a
// store.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/lattice/internal/model"
	"github.com/alfredjeanlab/lattice/internal/store"
)

// header is the first JSONL record written by an export.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	GraphCount int       `json:"graph_count"`
	NodeCount  int       `json:"node_count"`
	EdgeCount  int       `json:"edge_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// graphContent is one graph with everything it owns, ready to encode.
type graphContent struct {
	graph *model.Graph
	nodes []*model.Node
	edges []*model.Edge
}

// ExportJSONL writes every graph in the store as JSONL to w. Graphs are
// sorted by ID and each graph's nodes and edges (also ID-sorted) follow
// its record, so one graph's content is a contiguous run of lines.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	graphs, _, err := s.ListGraphs(ctx, model.GraphFilter{})
	if err != nil {
		return fmt.Errorf("list graphs: %w", err)
	}
	sort.Slice(graphs, func(i, j int) bool {
		return graphs[i].ID < graphs[j].ID
	})

	contents := make([]graphContent, 0, len(graphs))
	for _, g := range graphs {
		gc, err := loadGraph(ctx, s, g)
		if err != nil {
			return err
		}
		contents = append(contents, gc)
	}
	return writeJSONL(w, contents)
}

// ExportGraphJSONL writes a single graph and its contents as JSONL to w.
func ExportGraphJSONL(ctx context.Context, s store.Store, graphID string, w io.Writer) error {
	g, err := s.GetGraph(ctx, graphID)
	if err != nil {
		return fmt.Errorf("get graph %s: %w", graphID, err)
	}
	gc, err := loadGraph(ctx, s, g)
	if err != nil {
		return err
	}
	return writeJSONL(w, []graphContent{gc})
}

func loadGraph(ctx context.Context, s store.Store, g *model.Graph) (graphContent, error) {
	nodes, err := s.ListNodes(ctx, g.ID)
	if err != nil {
		return graphContent{}, fmt.Errorf("list nodes for %s: %w", g.ID, err)
	}
	edges, err := s.ListEdges(ctx, g.ID, model.EdgeFilter{})
	if err != nil {
		return graphContent{}, fmt.Errorf("list edges for %s: %w", g.ID, err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	return graphContent{graph: g, nodes: nodes, edges: edges}, nil
}

func writeJSONL(w io.Writer, contents []graphContent) error {
	var nodeCount, edgeCount int
	for _, gc := range contents {
		nodeCount += len(gc.nodes)
		edgeCount += len(gc.edges)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		GraphCount: len(contents),
		NodeCount:  nodeCount,
		EdgeCount:  edgeCount,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, gc := range contents {
		if err := enc.Encode(record{Type: "graph", Data: gc.graph}); err != nil {
			return fmt.Errorf("encode graph %s: %w", gc.graph.ID, err)
		}
		for _, n := range gc.nodes {
			if err := enc.Encode(record{Type: "node", Data: n}); err != nil {
				return fmt.Errorf("encode node %s: %w", n.ID, err)
			}
		}
		for _, e := range gc.edges {
			if err := enc.Encode(record{Type: "edge", Data: e}); err != nil {
				return fmt.Errorf("encode edge %s: %w", e.ID, err)
			}
		}
	}
	return nil
}
