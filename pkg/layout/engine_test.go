package layout

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/topoview/pkg/visual"
)

func TestReadCenters(t *testing.T) {
	positioned := `digraph G {
	graph [bb="0,0,310,216", nodesep=1.1111, ordering=out, rankdir=TB, ranksep=1.6667];
	node [fixedsize=true, label="", shape=box];
	n0 [height=0.69444, pos="155,191", width=3.0556];
	n1 [height=1.6667, pos="100,60", width=2.7778];
	n0 -> n1 [pos="e,100,120 155,166 155,150 100,140 100,130"];
}
`
	centers, err := ReadCenters(positioned)
	if err != nil {
		t.Fatalf("ReadCenters: %v", err)
	}
	want := map[string]Point{
		"n0": {X: 155, Y: 25},
		"n1": {X: 100, Y: 156},
	}
	if !reflect.DeepEqual(centers, want) {
		t.Errorf("centers = %v, want %v", centers, want)
	}
}

func TestReadCentersInvalid(t *testing.T) {
	if _, err := ReadCenters("digraph {"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := ReadCenters(`digraph G { graph [bb="a,b"]; }`); err == nil {
		t.Error("expected bounding box error")
	}
}

func TestParseFloats(t *testing.T) {
	tests := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{`"27,18"`, []float64{27, 18}, false},
		{`"0,0,310.5,216"`, []float64{0, 0, 310.5, 216}, false},
		{`"12,34!"`, []float64{12, 34}, false},
		{`"x,1"`, nil, true},
	}
	for _, tt := range tests {
		got, err := parseFloats(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && !reflect.DeepEqual(got, tt.want)) {
			t.Errorf("parseFloats(%s) = %v, %v", tt.in, got, err)
		}
	}
}

// topology is a small graph with a cycle and a disconnected fragment.
func topology() *visual.Graph {
	return &visual.Graph{
		Nodes: []visual.Node{
			node("vm", visual.KindSummary),
			node("host", visual.KindSummary),
			node("cluster", visual.KindSummary),
			node("ds", visual.KindSummary),
			node("orphan", visual.KindSummary),
		},
		Edges: []visual.Edge{
			{ID: "r1", Source: "vm", Target: "host"},
			{ID: "r2", Source: "host", Target: "cluster"},
			{ID: "r3", Source: "cluster", Target: "vm"},
			{ID: "r4", Source: "vm", Target: "ds"},
		},
	}
}

func TestGraphvizLayoutCompleteAndDeterministic(t *testing.T) {
	ctx := context.Background()
	opts := Options{Direction: visual.DirectionTB, Spacing: SummarySpacing}

	first, err := Layout(ctx, topology(), opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(first.Fallbacks) != 0 {
		t.Errorf("graphviz should place every node, fallbacks = %v", first.Fallbacks)
	}
	if len(first.Graph.Nodes) != 5 || !first.Graph.Positioned() {
		t.Fatalf("layout incomplete: %+v", first.Graph.Nodes)
	}

	second, err := Layout(ctx, topology(), opts)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !reflect.DeepEqual(first.Graph, second.Graph) {
		t.Error("identical inputs produced different positions")
	}
}

func TestGraphvizLayoutRanks(t *testing.T) {
	g := &visual.Graph{
		Nodes: []visual.Node{node("vm", visual.KindCompact), node("vm-info", visual.KindDetail)},
		Edges: []visual.Edge{{ID: "edge-1", Source: "vm", Target: "vm-info"}},
	}

	tb, err := Layout(context.Background(), g, Options{Direction: visual.DirectionTB})
	if err != nil {
		t.Fatal(err)
	}
	vm, _ := tb.Graph.Node("vm")
	info, _ := tb.Graph.Node("vm-info")
	if vm.Position.Y+vm.Footprint.Height > info.Position.Y {
		t.Errorf("TB: vm %v should sit above vm-info %v", vm.Position, info.Position)
	}
	if vm.Position.X < SummarySpacing.MarginX-0.01 || vm.Position.Y < SummarySpacing.MarginY-0.01 {
		t.Errorf("TB: margins not applied: %v", vm.Position)
	}

	lr, err := Layout(context.Background(), g, Options{Direction: visual.DirectionLR})
	if err != nil {
		t.Fatal(err)
	}
	vm, _ = lr.Graph.Node("vm")
	info, _ = lr.Graph.Node("vm-info")
	if vm.Position.X+vm.Footprint.Width > info.Position.X {
		t.Errorf("LR: vm %v should sit left of vm-info %v", vm.Position, info.Position)
	}
}

func TestRenderSVG(t *testing.T) {
	g := topology()
	g.Nodes[0].Main = true
	g.Edges[0].Label = "Hébergée par"
	g.Edges[0].Style = visual.RelationStyle(visual.ClassHosting)

	dot := ToDOT(g, visual.DirectionTB, SummarySpacing)
	if !strings.Contains(dot, `"vm" -> "host"`) || !strings.Contains(dot, "#60a5fa") {
		t.Errorf("ToDOT output unexpected:\n%s", dot)
	}

	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG output missing <svg> tag")
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\vm`, `"C:\\vm"`},
		{"web-01\nVM", `"web-01\nVM"`},
		{"sep\u2028del\x7f", "\"sep\u2028del\x7f\""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := dotQuote(tt.in); got != tt.want {
				t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestToDOTKeepsRawRunes(t *testing.T) {
	g := topology()
	g.Nodes[0].Label = "web\u202801"
	dot := ToDOT(g, visual.DirectionTB, SummarySpacing)
	if strings.Contains(dot, `\u2028`) {
		t.Errorf("ToDOT emitted a Go escape:\n%s", dot)
	}
	if !strings.Contains(dot, "web\u202801") {
		t.Errorf("ToDOT lost the raw label:\n%s", dot)
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "invalid dot {{{"); err == nil {
		t.Error("RenderSVG should fail for invalid DOT")
	}
}
