package services

import (
	"context"
	"testing"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
)

func TestExportLabelsAndPositions(t *testing.T) {
	engine := &fakeEngine{
		namespaces: []string{"user_u1_travel"},
		entities: []graphengine.Entity{
			{ID: "n1", Namespace: "user_u1_travel", Properties: map[string]any{"name": "Alice"}},
			{ID: "n2", Namespace: "user_u1_travel", Properties: map[string]any{"title": "Trip Report"}},
			{ID: "n3", Namespace: "user_u1_travel", Properties: map[string]any{"identifier": "doc-7"}},
			{ID: "n4", Namespace: "user_u1_travel", Properties: map[string]any{"weight": 3}},
		},
	}
	gs := NewGraphService(engine, testLogger(t))

	export, err := gs.Export(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(export.Nodes) != 4 {
		t.Fatalf("nodes=%d, want 4", len(export.Nodes))
	}

	wantLabels := map[string]string{"n1": "Alice", "n2": "Trip Report", "n3": "doc-7", "n4": "Node"}
	for _, node := range export.Nodes {
		if node.Data.Label != wantLabels[node.ID] {
			t.Fatalf("node %s label=%q, want %q", node.ID, node.Data.Label, wantLabels[node.ID])
		}
		if node.Position.X < 0 || node.Position.X > 800 || node.Position.Y < 0 || node.Position.Y > 600 {
			t.Fatalf("node %s position out of canvas: %+v", node.ID, node.Position)
		}
	}
}

func TestExportDropsEdgesLeavingScope(t *testing.T) {
	engine := &fakeEngine{
		namespaces: []string{"user_u1_travel", "user_u1_finance"},
		entities: []graphengine.Entity{
			{ID: "a", Namespace: "user_u1_travel", Properties: map[string]any{"name": "Alice"}},
			{ID: "b", Namespace: "user_u1_travel", Properties: map[string]any{"name": "Bob"}},
		},
		relationships: []graphengine.Relationship{
			{ID: "e1", SourceID: "a", TargetID: "b", Relation: "MET", Namespace: "user_u1_travel"},
			// Endpoint "z" belongs to another user's namespace and is not in
			// the entity set.
			{ID: "e2", SourceID: "a", TargetID: "z", Relation: "KNOWS", Namespace: "user_u1_travel"},
		},
	}
	gs := NewGraphService(engine, testLogger(t))

	export, err := gs.Export(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(export.Edges) != 1 {
		t.Fatalf("edges=%d, want 1", len(export.Edges))
	}
	if export.Edges[0].ID != "e1" || export.Edges[0].Label != "MET" {
		t.Fatalf("edge: %+v", export.Edges[0])
	}
}

func TestExportEmptyScopeIsWellFormed(t *testing.T) {
	engine := &fakeEngine{}
	gs := NewGraphService(engine, testLogger(t))

	export, err := gs.Export(context.Background(), "nobody", "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Nodes == nil || export.Edges == nil {
		t.Fatal("nodes/edges must be empty arrays, not nil")
	}
	if len(export.Nodes) != 0 || len(export.Edges) != 0 {
		t.Fatalf("export: %+v", export)
	}
}
