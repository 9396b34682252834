package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/topoview/pkg/visual"
)

// pointsPerInch converts pixel distances (1px = 1pt) to Graphviz inches.
const pointsPerInch = 72.0

// document is a DOT graph ready for the engine, with the mapping from
// visual node ids to the plain DOT identifiers used in it.
type document struct {
	dot strings.Builder
	ids map[string]string
}

func (d *document) String() string { return d.dot.String() }

// buildDocument writes g as a DOT digraph. Nodes are named n0, n1, ... in
// input order so ids never need quoting. Edges whose endpoints are not
// nodes of g are skipped rather than letting dot invent nodes.
func buildDocument(g *visual.Graph, dir visual.Direction, sp Spacing) *document {
	d := &document{ids: make(map[string]string, len(g.Nodes))}
	w := &d.dot

	w.WriteString("digraph G {\n")
	fmt.Fprintf(w, "  graph [rankdir=%s, nodesep=%s, ranksep=%s, ordering=out, splines=false];\n",
		dir, inches(sp.NodeSep), inches(sp.RankSep))
	w.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")

	for i, n := range g.Nodes {
		name := "n" + strconv.Itoa(i)
		d.ids[n.ID] = name
		fmt.Fprintf(w, "  %s [width=%s, height=%s];\n", name, inches(n.Footprint.Width), inches(n.Footprint.Height))
	}

	for _, e := range g.Edges {
		from, okFrom := d.ids[e.Source]
		to, okTo := d.ids[e.Target]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(w, "  %s -> %s;\n", from, to)
	}

	w.WriteString("}\n")
	return d
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}
