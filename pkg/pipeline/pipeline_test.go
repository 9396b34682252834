package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// countingEngine runs Graphviz and counts invocations.
type countingEngine struct {
	calls int
}

func (e *countingEngine) Centers(ctx context.Context, dot string) (map[string]layout.Point, error) {
	e.calls++
	return layout.GraphvizEngine{}.Centers(ctx, dot)
}

func sampleGraph() *scene.Graph {
	return &scene.Graph{
		Nodes: []scene.Entity{
			{
				ID: "vm-1", Type: scene.KindVM, Label: "web-01",
				Data: map[string]any{
					"disks":            []any{map[string]any{"capacity_gb": 40.0}},
					"network_adapters": []any{map[string]any{"mac_address": "00:50:56:aa:bb:cc"}},
				},
			},
			{ID: "host-1", Type: scene.KindHost, Label: "esx-01", Data: map[string]any{}},
			{ID: "ds-1", Type: scene.KindDatastore, Label: "ds-prod", Data: map[string]any{"capacity_gb": 100, "free_space_gb": 25}},
		},
		Edges: []scene.Relation{
			{ID: "r1", Source: "vm-1", Target: "host-1", Label: "Hébergée par"},
			{ID: "r2", Source: "vm-1", Target: "ds-1", Label: "Stockée sur"},
		},
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"dot", false},
		{"graphviz", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
	if err := ValidateFormats([]string{"json", "pdf"}); err == nil {
		t.Error("ValidateFormats should reject pdf")
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name      string
		mode      projection.Mode
		wantNodes int
		wantEdges int
	}{
		{"summary", projection.ModeSummary, 3, 2},
		// vm: compact + info + compute + disk + nic; host: compact + hardware + esxi;
		// datastore: compact + capacity.
		{"detail", projection.ModeDetail, 10, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(nil, nil, nil)
			res, err := r.Execute(context.Background(), sampleGraph(), Options{Mode: tt.mode, MainID: "vm-1"})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if len(res.Graph.Nodes) != tt.wantNodes || len(res.Graph.Edges) != tt.wantEdges {
				t.Fatalf("got %d nodes %d edges, want %d/%d", len(res.Graph.Nodes), len(res.Graph.Edges), tt.wantNodes, tt.wantEdges)
			}
			if !res.Graph.Positioned() {
				t.Error("every node should be positioned")
			}
			if len(res.Fallbacks) != 0 {
				t.Errorf("unexpected fallbacks: %v", res.Fallbacks)
			}
			if n, _ := res.Graph.Node("vm-1"); !n.Main {
				t.Error("start node should be flagged main")
			}
			if res.Stats.Entities != 3 || res.Stats.NodeCount != tt.wantNodes {
				t.Errorf("stats = %+v", res.Stats)
			}
			if res.GraphHash == "" {
				t.Error("graph hash should be set")
			}
		})
	}
}

func TestExecuteMalformed(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), &scene.Graph{}, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Graph.Empty() {
		t.Errorf("malformed input should give an empty diagram, got %d nodes", len(res.Graph.Nodes))
	}
}

func TestExecuteCachesPositions(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := &countingEngine{}
	r := NewRunner(fc, nil, nil)
	r.Engine = engine

	first, err := r.Execute(ctx, sampleGraph(), Options{Mode: projection.ModeDetail})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, sampleGraph(), Options{Mode: projection.ModeDetail})
	if err != nil {
		t.Fatal(err)
	}

	if engine.calls != 1 {
		t.Errorf("engine ran %d times, want 1", engine.calls)
	}
	if first.CacheInfo.LayoutHit || !second.CacheInfo.LayoutHit {
		t.Errorf("cache hits = %v, %v; want false, true", first.CacheInfo.LayoutHit, second.CacheInfo.LayoutHit)
	}
	for i, n := range second.Graph.Nodes {
		want := first.Graph.Nodes[i]
		if *n.Position != *want.Position || n.SourcePort != want.SourcePort {
			t.Errorf("node %s cached position %+v, want %+v", n.ID, *n.Position, *want.Position)
		}
	}
	if second.Graph.Nodes[0].Payload == nil {
		t.Error("cached result should carry fresh payloads")
	}

	if _, err := r.Execute(ctx, sampleGraph(), Options{Mode: projection.ModeDetail, Direction: visual.DirectionLR}); err != nil {
		t.Fatal(err)
	}
	if engine.calls != 2 {
		t.Errorf("a different direction must not reuse positions, engine calls = %d", engine.calls)
	}

	if _, err := r.Execute(ctx, sampleGraph(), Options{Mode: projection.ModeDetail, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if engine.calls != 3 {
		t.Errorf("refresh must bypass the cache, engine calls = %d", engine.calls)
	}
}

func TestGraphHash(t *testing.T) {
	a := projection.Project(sampleGraph(), projection.ModeSummary)
	b := projection.Project(sampleGraph(), projection.ModeSummary)
	if GraphHash(a) != GraphHash(b) {
		t.Error("GraphHash should be deterministic")
	}

	g := sampleGraph()
	g.Nodes[1].Data["model"] = "R740"
	if GraphHash(a) != GraphHash(projection.Project(g, projection.ModeSummary)) {
		t.Error("payload values should not change the hash")
	}

	g.Edges = g.Edges[:1]
	if GraphHash(a) == GraphHash(projection.Project(g, projection.ModeSummary)) {
		t.Error("removing an edge should change the hash")
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(ctx, sampleGraph(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{FormatJSON, `"direction": "TB"`},
		{FormatSVG, "<svg"},
		{FormatDOT, "digraph"},
		{FormatGraphviz, "<svg"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := r.Render(ctx, res.Result, tt.format)
			if err != nil {
				t.Fatalf("Render(%s): %v", tt.format, err)
			}
			if !strings.Contains(string(out), tt.want) {
				t.Errorf("Render(%s) output missing %q", tt.format, tt.want)
			}
		})
	}

	if _, err := r.Render(ctx, res.Result, "png"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("png: got %v", err)
	}
}
