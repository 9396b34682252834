package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

const svgCSS = `
    .node rect { stroke: #475569; stroke-width: 1.5; }
    .node.main rect { stroke: #2563eb; stroke-width: 3; }
    .node.selected rect { stroke: #f97316; stroke-width: 3; }
    .node text { font-family: system-ui, sans-serif; fill: #0f172a; }
    .node .meta { fill: #64748b; }
    .edge { fill: none; }
    .edge.animated { stroke-dasharray: 6 4; animation: flow 1s linear infinite; }
    .edge-label { font-family: system-ui, sans-serif; font-size: 10px; fill: #475569; }
    @keyframes flow { to { stroke-dashoffset: -10; } }`

var typeFill = map[scene.Kind]string{
	scene.KindVM:        "#eef6ff",
	scene.KindHost:      "#ecfdf5",
	scene.KindCluster:   "#f5f3ff",
	scene.KindDatastore: "#fefce8",
	scene.KindNetwork:   "#ecfeff",
}

const defaultFill = "#f8fafc"

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	selected   string
	fields     bool
	edgeLabels bool
}

// WithSelected highlights the node with the given id.
func WithSelected(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// WithoutFields draws only titles, not payload rows.
func WithoutFields() SVGOption { return func(r *svgRenderer) { r.fields = false } }

// WithoutEdgeLabels omits relation labels.
func WithoutEdgeLabels() SVGOption { return func(r *svgRenderer) { r.edgeLabels = false } }

// RenderSVG draws a positioned diagram. Nodes without a position are
// skipped, as are edges touching them.
func RenderSVG(res *layout.Result, opts ...SVGOption) []byte {
	r := svgRenderer{fields: true, edgeLabels: true}
	for _, opt := range opts {
		opt(&r)
	}

	g := res.Graph
	idx := g.Index()
	w, h := max(res.Width, 1), max(res.Height, 1)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)
	renderMarkers(&buf, g.Edges)

	for _, e := range g.Edges {
		si, okS := idx[e.Source]
		ti, okT := idx[e.Target]
		if !okS || !okT || g.Nodes[si].Position == nil || g.Nodes[ti].Position == nil {
			continue
		}
		r.renderEdge(&buf, e, &g.Nodes[si], &g.Nodes[ti])
	}
	for i := range g.Nodes {
		if g.Nodes[i].Position == nil {
			continue
		}
		r.renderNode(&buf, &g.Nodes[i])
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func markerID(s visual.Style) string {
	return fmt.Sprintf("arrow-%s-%.0f", strings.TrimPrefix(s.Stroke, "#"), s.ArrowSize)
}

func renderMarkers(buf *bytes.Buffer, edges []visual.Edge) {
	seen := map[string]visual.Style{}
	for _, e := range edges {
		seen[markerID(e.Style)] = e.Style
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	buf.WriteString("  <defs>\n")
	for _, id := range ids {
		s := seen[id]
		size := max(s.ArrowSize/2, 4)
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="%.1f" markerHeight="%.1f" markerUnits="userSpaceOnUse" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n",
			id, size, size, EscapeXML(s.Stroke))
	}
	buf.WriteString("  </defs>\n")
}

// portPoint is where an edge attaches on the given side of n.
func portPoint(n *visual.Node, side visual.Side) (x, y float64) {
	p, f := n.Position, n.Footprint
	switch side {
	case visual.SideTop:
		return p.X + f.Width/2, p.Y
	case visual.SideBottom:
		return p.X + f.Width/2, p.Y + f.Height
	case visual.SideLeft:
		return p.X, p.Y + f.Height/2
	case visual.SideRight:
		return p.X + f.Width, p.Y + f.Height/2
	}
	cx, cy, _ := n.Center()
	return cx, cy
}

func (r *svgRenderer) renderEdge(buf *bytes.Buffer, e visual.Edge, src, dst *visual.Node) {
	x1, y1 := portPoint(src, src.SourcePort)
	x2, y2 := portPoint(dst, dst.TargetPort)

	// Control points pull the curve along the flow axis.
	var c1x, c1y, c2x, c2y float64
	if src.SourcePort == visual.SideRight {
		dx := max((x2-x1)/2, 40)
		c1x, c1y, c2x, c2y = x1+dx, y1, x2-dx, y2
	} else {
		dy := max((y2-y1)/2, 40)
		c1x, c1y, c2x, c2y = x1, y1+dy, x2, y2-dy
	}

	class := "edge edge-" + string(e.Class)
	if e.Animated {
		class += " animated"
	}
	fmt.Fprintf(buf, `  <path id="edge-%s" class="%s" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" stroke="%s" stroke-width="%.1f" marker-end="url(#%s)"/>`+"\n",
		EscapeXML(e.ID), class, x1, y1, c1x, c1y, c2x, c2y, x2, y2,
		EscapeXML(e.Style.Stroke), e.Style.StrokeWidth, markerID(e.Style))

	if r.edgeLabels && e.Label != "" {
		fmt.Fprintf(buf, `  <text class="edge-label" x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n",
			(x1+x2)/2, (y1+y2)/2-4, EscapeXML(e.Label))
	}
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n *visual.Node) {
	p, f := n.Position, n.Footprint
	class := "node node-" + string(n.Kind)
	if n.Main {
		class += " main"
	}
	if n.ID == r.selected {
		class += " selected"
	}
	fill, ok := typeFill[scene.Kind(n.Type)]
	if !ok {
		fill = defaultFill
	}

	fmt.Fprintf(buf, `  <g id="node-%s" class="%s">`+"\n", EscapeXML(n.ID), class)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" ry="8" fill="%s"/>`+"\n",
		p.X, p.Y, f.Width, f.Height, fill)

	inner := f.Width - 2*padding
	y := p.Y + padding + fontSize
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f" font-weight="bold">%s</text>`+"\n",
		p.X+padding, y, fontSize, EscapeXML(truncate(n.Label, inner, fontSize)))

	meta := n.Type
	if n.Status != "" {
		meta += " · " + n.Status
	}
	if meta != "" && f.Height >= 2*rowHeight+padding {
		y += rowHeight
		fmt.Fprintf(buf, `    <text class="meta" x="%.1f" y="%.1f" font-size="%.0f">%s</text>`+"\n",
			p.X+padding, y, smallFontSize, EscapeXML(truncate(meta, inner, smallFontSize)))
	}

	if r.fields && n.Kind != visual.KindCompact && n.Payload != nil {
		for _, fl := range n.Payload.Fields() {
			if y+rowHeight > p.Y+f.Height-padding {
				break
			}
			y += rowHeight
			row := fl.Name + ": " + fl.Value
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.0f">%s</text>`+"\n",
				p.X+padding, y, smallFontSize, EscapeXML(truncate(row, inner, smallFontSize)))
		}
	}
	buf.WriteString("  </g>\n")
}
