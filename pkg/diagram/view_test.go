package diagram

import (
	"context"
	"testing"

	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

func TestFilter(t *testing.T) {
	g := &visual.Graph{
		Nodes: []visual.Node{
			{ID: "a", Label: "web-01", Type: "VM"},
			{ID: "b", Label: "esx-01", Type: "Host"},
			{ID: "c", Label: "web-02", Type: "VM"},
		},
		Edges: []visual.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "c"},
		},
	}
	tests := []struct {
		text      string
		wantNodes int
		wantEdges int
	}{
		{"", 3, 2},
		{"WEB", 2, 1},
		{"host", 1, 0},
		{"  vm ", 2, 1},
		{"nothing", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := Filter(g, tt.text)
			if len(out.Nodes) != tt.wantNodes || len(out.Edges) != tt.wantEdges {
				t.Errorf("Filter(%q) = %d nodes %d edges, want %d/%d", tt.text, len(out.Nodes), len(out.Edges), tt.wantNodes, tt.wantEdges)
			}
		})
	}
	if len(g.Nodes) != 3 {
		t.Error("Filter must not modify its input")
	}
}

func TestViewAppliesFilter(t *testing.T) {
	c := New(Options{Fetcher: fixtures})
	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatal(err)
	}
	c.SetFilter("datastore")
	v := c.View()
	if len(v.Result.Graph.Nodes) != 1 || v.Result.Graph.Nodes[0].ID != "ds-prod-01" {
		t.Fatalf("filtered nodes = %+v", v.Result.Graph.Nodes)
	}
	if v.Status != StatusReady {
		t.Errorf("filter should not change status, got %s", v.Status)
	}

	c.SetFilter("")
	if n := len(c.View().Result.Graph.Nodes); n != 3 {
		t.Errorf("cleared filter nodes = %d", n)
	}
}
