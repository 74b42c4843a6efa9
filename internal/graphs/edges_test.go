package graphs

import (
	"context"
	"testing"

	"github.com/alfredjeanlab/lattice/internal/model"
)

func TestCreateEdge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")

	e, err := svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgePrerequisite,
	})
	if err != nil {
		t.Fatalf("create edge: %v", err)
	}
	if e.ID == "" {
		t.Error("edge id not assigned")
	}
	if e.GraphID != g.ID || e.FromNodeID != a.ID || e.ToNodeID != b.ID {
		t.Errorf("edge = %+v", e)
	}
	if e.Type != model.EdgePrerequisite {
		t.Errorf("type = %s, want prerequisite", e.Type)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestCreateEdge_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")

	tests := []struct {
		name    string
		in      CreateEdgeInput
		wantErr func(error) bool
		errName string
	}{
		{
			"missing graph",
			CreateEdgeInput{GraphID: "gr-missing", FromNodeID: a.ID, ToNodeID: b.ID, Type: model.EdgePrerequisite},
			IsNotFound, "NotFound",
		},
		{
			"missing from node",
			CreateEdgeInput{GraphID: g.ID, FromNodeID: "nd-missing", ToNodeID: b.ID, Type: model.EdgePrerequisite},
			IsNotFound, "NotFound",
		},
		{
			"missing to node",
			CreateEdgeInput{GraphID: g.ID, FromNodeID: a.ID, ToNodeID: "nd-missing", Type: model.EdgePrerequisite},
			IsNotFound, "NotFound",
		},
		{
			"self loop",
			CreateEdgeInput{GraphID: g.ID, FromNodeID: a.ID, ToNodeID: a.ID, Type: model.EdgePrerequisite},
			IsInvalidInput, "InvalidInput",
		},
		{
			"unknown edge type",
			CreateEdgeInput{GraphID: g.ID, FromNodeID: a.ID, ToNodeID: b.ID, Type: "related-to"},
			IsInvalidInput, "InvalidInput",
		},
		{
			"empty from node",
			CreateEdgeInput{GraphID: g.ID, ToNodeID: b.ID, Type: model.EdgePrerequisite},
			IsInvalidInput, "InvalidInput",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateEdge(ctx, tt.in); !tt.wantErr(err) {
				t.Errorf("error = %v, want %s", err, tt.errName)
			}
		})
	}
}

func TestCreateEdge_DuplicatePair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)

	_, err := svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgePrerequisite,
	})
	if !IsConflict(err) {
		t.Fatalf("duplicate pair error = %v, want Conflict", err)
	}

	// Same pair under the other type is a distinct edge.
	if _, err := svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgeSubTopic,
	}); err != nil {
		t.Errorf("same pair, different type rejected: %v", err)
	}

	// The pair is ordered, so the reverse direction is distinct too.
	if _, err := svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g.ID,
		FromNodeID: b.ID,
		ToNodeID:   a.ID,
		Type:       model.EdgePrerequisite,
	}); err != nil {
		t.Errorf("reverse direction rejected: %v", err)
	}
}

func TestCreateEdge_CrossGraphEndpoint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g1 := mustCreateGraph(t, svc, "cs-101")
	g2 := mustCreateGraph(t, svc, "cs-102")
	a := mustCreateNode(t, svc, g1.ID, "A")
	b := mustCreateNode(t, svc, g2.ID, "B")

	_, err := svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g1.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgePrerequisite,
	})
	if !IsIsolationViolation(err) {
		t.Fatalf("foreign to-node error = %v, want IsolationViolation", err)
	}

	_, err = svc.CreateEdge(ctx, CreateEdgeInput{
		GraphID:    g2.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgePrerequisite,
	})
	if !IsIsolationViolation(err) {
		t.Fatalf("foreign from-node error = %v, want IsolationViolation", err)
	}

	edges, err := svc.ListEdges(ctx, g1.ID, model.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("cross-graph attempt left %d edges", len(edges))
	}
}

func TestListEdges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	c := mustCreateNode(t, svc, g.ID, "C")
	mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)
	mustCreateEdge(t, svc, g.ID, b.ID, c.ID, model.EdgePrerequisite)
	mustCreateEdge(t, svc, g.ID, a.ID, c.ID, model.EdgeSubTopic)

	all, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, want 3", len(all))
	}

	prereqs, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{Type: model.EdgePrerequisite})
	if err != nil {
		t.Fatalf("list prerequisite edges: %v", err)
	}
	if len(prereqs) != 2 {
		t.Errorf("len(prereqs) = %d, want 2", len(prereqs))
	}

	from, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{FromNodeID: a.ID})
	if err != nil {
		t.Fatalf("list edges from a: %v", err)
	}
	if len(from) != 2 {
		t.Errorf("len(from) = %d, want 2", len(from))
	}

	if _, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{Type: "related-to"}); !IsInvalidInput(err) {
		t.Errorf("invalid type error = %v, want InvalidInput", err)
	}
}

func TestDeleteEdge_ByID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	e := mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)

	result, err := svc.DeleteEdge(ctx, DeleteEdgeInput{GraphID: g.ID, EdgeID: e.ID})
	if err != nil {
		t.Fatalf("delete edge: %v", err)
	}
	if result.EdgeID != e.ID || result.FromNodeID != a.ID || result.ToNodeID != b.ID {
		t.Errorf("result = %+v", result)
	}
	if result.Type != model.EdgePrerequisite {
		t.Errorf("result type = %s", result.Type)
	}

	edges, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edge still present after delete")
	}
}

func TestDeleteEdge_ByIDRejectsMismatchedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	e := mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)

	tests := []struct {
		name string
		in   DeleteEdgeInput
	}{
		{"wrong from", DeleteEdgeInput{GraphID: g.ID, EdgeID: e.ID, FromNodeID: b.ID}},
		{"wrong to", DeleteEdgeInput{GraphID: g.ID, EdgeID: e.ID, ToNodeID: a.ID}},
		{"wrong type", DeleteEdgeInput{GraphID: g.ID, EdgeID: e.ID, Type: model.EdgeSubTopic}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.DeleteEdge(ctx, tt.in); !IsInvalidInput(err) {
				t.Errorf("error = %v, want InvalidInput", err)
			}
		})
	}

	// Matching fields alongside the id are accepted.
	if _, err := svc.DeleteEdge(ctx, DeleteEdgeInput{
		GraphID:    g.ID,
		EdgeID:     e.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgePrerequisite,
	}); err != nil {
		t.Errorf("delete with matching fields: %v", err)
	}
}

func TestDeleteEdge_ByPair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	e := mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)

	result, err := svc.DeleteEdge(ctx, DeleteEdgeInput{GraphID: g.ID, FromNodeID: a.ID, ToNodeID: b.ID})
	if err != nil {
		t.Fatalf("delete by pair: %v", err)
	}
	if result.EdgeID != e.ID {
		t.Errorf("deleted %s, want %s", result.EdgeID, e.ID)
	}
}

func TestDeleteEdge_AmbiguousPair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)
	sub := mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgeSubTopic)

	// Two edges connect the pair; without a type the delete is ambiguous.
	_, err := svc.DeleteEdge(ctx, DeleteEdgeInput{GraphID: g.ID, FromNodeID: a.ID, ToNodeID: b.ID})
	if !IsInvalidInput(err) {
		t.Fatalf("ambiguous delete error = %v, want InvalidInput", err)
	}

	result, err := svc.DeleteEdge(ctx, DeleteEdgeInput{
		GraphID:    g.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgeSubTopic,
	})
	if err != nil {
		t.Fatalf("typed delete: %v", err)
	}
	if result.EdgeID != sub.ID {
		t.Errorf("deleted %s, want %s", result.EdgeID, sub.ID)
	}

	remaining, err := svc.ListEdges(ctx, g.ID, model.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Type != model.EdgePrerequisite {
		t.Errorf("remaining edges = %v", remaining)
	}
}

func TestDeleteEdge_NotConnected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g := mustCreateGraph(t, svc, "cs-101")
	a := mustCreateNode(t, svc, g.ID, "A")
	b := mustCreateNode(t, svc, g.ID, "B")
	mustCreateEdge(t, svc, g.ID, a.ID, b.ID, model.EdgePrerequisite)

	// The pair is ordered: the reverse direction carries no edge.
	_, err := svc.DeleteEdge(ctx, DeleteEdgeInput{GraphID: g.ID, FromNodeID: b.ID, ToNodeID: a.ID})
	if !IsNotConnected(err) {
		t.Fatalf("reverse pair error = %v, want NotConnected", err)
	}

	_, err = svc.DeleteEdge(ctx, DeleteEdgeInput{
		GraphID:    g.ID,
		FromNodeID: a.ID,
		ToNodeID:   b.ID,
		Type:       model.EdgeSubTopic,
	})
	if !IsNotConnected(err) {
		t.Fatalf("absent type error = %v, want NotConnected", err)
	}
}

func TestDeleteEdge_CrossGraphIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	g1 := mustCreateGraph(t, svc, "cs-101")
	g2 := mustCreateGraph(t, svc, "cs-102")
	a := mustCreateNode(t, svc, g1.ID, "A")
	b := mustCreateNode(t, svc, g1.ID, "B")
	e := mustCreateEdge(t, svc, g1.ID, a.ID, b.ID, model.EdgePrerequisite)

	_, err := svc.DeleteEdge(ctx, DeleteEdgeInput{GraphID: g2.ID, EdgeID: e.ID})
	if !IsIsolationViolation(err) {
		t.Fatalf("error = %v, want IsolationViolation", err)
	}

	edges, err := svc.ListEdges(ctx, g1.ID, model.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 1 {
		t.Errorf("edge lost to cross-graph delete")
	}
}

func TestDeleteEdge_NotFound(t *testing.T) {
	svc := newTestService(t)

	g := mustCreateGraph(t, svc, "cs-101")
	_, err := svc.DeleteEdge(context.Background(), DeleteEdgeInput{GraphID: g.ID, EdgeID: "ed-missing"})
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want NotFound", err)
	}
}
