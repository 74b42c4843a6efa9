package graphs

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/alfredjeanlab/lattice/internal/model"
)

// MaxTraversalDepth bounds every traversal walk, independent of the
// cycle guard. Requests above the bound are clamped; zero requests the
// bound itself.
const MaxTraversalDepth = 10

// TraversalMode selects what a traversal follows.
type TraversalMode string

const (
	// ModePrerequisite follows prerequisite edges only, directed.
	ModePrerequisite TraversalMode = "prerequisite"
	// ModeSubTopic follows sub-topic edges only, directed.
	ModeSubTopic TraversalMode = "sub-topic"
	// ModeConnected follows edges of any type in either direction and
	// emits each reachable node once, at its minimum hop distance.
	ModeConnected TraversalMode = "connected"
)

// Direction orients a directed closure.
type Direction string

const (
	// DirectionOut walks edges from source to target.
	DirectionOut Direction = "out"
	// DirectionIn walks edges from target back to source, e.g. from a
	// unit toward its prerequisites.
	DirectionIn Direction = "in"
)

// TraversalStep is one emitted node: the node itself, its depth from the
// start, and the node-id path that reached it (start first, this node
// last). The start node itself is never emitted.
type TraversalStep struct {
	Node  *model.Node `json:"node"`
	Depth int         `json:"depth"`
	Path  []string    `json:"path"`
}

// TraverseInput holds transport-agnostic traversal parameters.
type TraverseInput struct {
	GraphID     string        `json:"graph_id"`
	StartNodeID string        `json:"start_node_id"`
	Mode        TraversalMode `json:"mode"`
	Direction   Direction     `json:"direction,omitempty"` // ignored for ModeConnected; defaults to DirectionOut
	MaxDepth    int           `json:"max_depth,omitempty"` // 0 means MaxTraversalDepth; larger values are clamped
}

// Traverse validates the request, loads the graph's topology once, and
// returns a lazily evaluated step sequence over it. Closure modes walk
// depth-first in stored edge order; a node already on the current path
// is never re-entered, so a node reachable through two branches appears
// once per branch with distinct paths. Connected mode walks
// breadth-first and emits each node exactly once.
func (s *Service) Traverse(ctx context.Context, in TraverseInput) (iter.Seq[TraversalStep], error) {
	switch in.Mode {
	case ModePrerequisite, ModeSubTopic, ModeConnected:
	default:
		return nil, inputError(fmt.Sprintf("invalid traversal mode %q", in.Mode))
	}
	dir := in.Direction
	if dir == "" {
		dir = DirectionOut
	}
	switch dir {
	case DirectionOut, DirectionIn:
	default:
		return nil, inputError(fmt.Sprintf("invalid direction %q", in.Direction))
	}
	if in.MaxDepth < 0 {
		return nil, inputError("max_depth must be non-negative")
	}

	if _, err := requireGraph(ctx, s.store, in.GraphID); err != nil {
		return nil, err
	}
	if _, err := requireNode(ctx, s.store, in.GraphID, in.StartNodeID); err != nil {
		return nil, err
	}

	nodes, err := s.store.ListNodes(ctx, in.GraphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	byID := make(map[string]*model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	filter := model.EdgeFilter{}
	if in.Mode != ModeConnected {
		filter.Type = model.EdgeType(in.Mode)
	}
	edges, err := s.store.ListEdges(ctx, in.GraphID, filter)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}

	adj := adjacency(edges, in.Mode, dir)
	limit := clampDepth(in.MaxDepth)

	if in.Mode == ModeConnected {
		return connectedSeq(byID, adj, in.StartNodeID, limit), nil
	}
	return closureSeq(byID, adj, in.StartNodeID, limit), nil
}

func clampDepth(d int) int {
	if d <= 0 || d > MaxTraversalDepth {
		return MaxTraversalDepth
	}
	return d
}

// adjacency builds neighbor lists in stored edge order, so traversal
// output is deterministic for a given graph state.
func adjacency(edges []*model.Edge, mode TraversalMode, dir Direction) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		switch {
		case mode == ModeConnected:
			adj[e.FromNodeID] = append(adj[e.FromNodeID], e.ToNodeID)
			adj[e.ToNodeID] = append(adj[e.ToNodeID], e.FromNodeID)
		case dir == DirectionIn:
			adj[e.ToNodeID] = append(adj[e.ToNodeID], e.FromNodeID)
		default:
			adj[e.FromNodeID] = append(adj[e.FromNodeID], e.ToNodeID)
		}
	}
	return adj
}

// closureSeq walks depth-first in preorder. The cycle guard is
// path-local: membership in the current path blocks re-entry, while
// nodes seen on other branches remain reachable.
func closureSeq(nodes map[string]*model.Node, adj map[string][]string, start string, limit int) iter.Seq[TraversalStep] {
	return func(yield func(TraversalStep) bool) {
		path := []string{start}
		onPath := map[string]bool{start: true}

		var walk func(from string, depth int) bool
		walk = func(from string, depth int) bool {
			if depth >= limit {
				return true
			}
			for _, next := range adj[from] {
				if onPath[next] {
					continue
				}
				node := nodes[next]
				if node == nil {
					continue
				}

				path = append(path, next)
				onPath[next] = true
				more := yield(TraversalStep{Node: node, Depth: depth + 1, Path: slices.Clone(path)})
				if more {
					more = walk(next, depth+1)
				}
				delete(onPath, next)
				path = path[:len(path)-1]
				if !more {
					return false
				}
			}
			return true
		}
		walk(start, 0)
	}
}

// connectedSeq walks breadth-first, emitting each node once at its
// minimum hop distance with one shortest path as evidence.
func connectedSeq(nodes map[string]*model.Node, adj map[string][]string, start string, limit int) iter.Seq[TraversalStep] {
	return func(yield func(TraversalStep) bool) {
		type item struct {
			id    string
			depth int
			path  []string
		}
		visited := map[string]bool{start: true}
		queue := []item{{id: start, path: []string{start}}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.depth >= limit {
				continue
			}
			for _, next := range adj[cur.id] {
				if visited[next] {
					continue
				}
				visited[next] = true
				node := nodes[next]
				if node == nil {
					continue
				}

				path := append(slices.Clone(cur.path), next)
				if !yield(TraversalStep{Node: node, Depth: cur.depth + 1, Path: path}) {
					return
				}
				queue = append(queue, item{id: next, depth: cur.depth + 1, path: path})
			}
		}
	}
}

// DetectCycles reports the directed cycles found among edges of one type,
// each as a node-id path [n1 ... nk n1]. The walk runs depth-first from
// every node with recursion-path tracking (a plain visited set cannot
// tell a shared ancestor from a true cycle), covers disconnected
// components, and shares the traversal depth bound, so only cycles of up
// to MaxTraversalDepth nodes are found. Rotations of the same cycle are
// reported once, rotated so the smallest node id leads.
func (s *Service) DetectCycles(ctx context.Context, graphID string, edgeType model.EdgeType) ([][]string, error) {
	if !edgeType.IsValid() {
		return nil, inputError(fmt.Sprintf("invalid edge type %q", edgeType))
	}
	if _, err := requireGraph(ctx, s.store, graphID); err != nil {
		return nil, err
	}

	nodes, err := s.store.ListNodes(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	edges, err := s.store.ListEdges(ctx, graphID, model.EdgeFilter{Type: edgeType})
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	adj := adjacency(edges, TraversalMode(edgeType), DirectionOut)

	seen := make(map[string]bool)
	var cycles [][]string

	for _, n := range nodes {
		var path []string
		onPath := make(map[string]int)

		var walk func(cur string, depth int)
		walk = func(cur string, depth int) {
			if depth >= MaxTraversalDepth {
				return
			}
			onPath[cur] = len(path)
			path = append(path, cur)

			for _, next := range adj[cur] {
				if at, ok := onPath[next]; ok {
					cycle := canonicalCycle(append(slices.Clone(path[at:]), next))
					key := strings.Join(cycle, ",")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
					continue
				}
				walk(next, depth+1)
			}

			delete(onPath, cur)
			path = path[:len(path)-1]
		}
		walk(n.ID, 0)
	}

	return cycles, nil
}

// canonicalCycle rotates a cycle [n1 ... nk n1] so the smallest node id
// leads, giving every rotation of the same cycle one spelling.
func canonicalCycle(cycle []string) []string {
	core := cycle[:len(cycle)-1]
	lead := 0
	for i, id := range core {
		if id < core[lead] {
			lead = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, core[lead:]...)
	out = append(out, core[:lead]...)
	out = append(out, core[lead])
	return out
}
