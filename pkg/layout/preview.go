package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/topoview/pkg/visual"
)

// ToDOT converts a visual graph to a labelled, styled DOT document suitable
// for rendering by Graphviz directly. Edge colours follow their styling
// class; sub-components are drawn with a dashed outline.
func ToDOT(g *visual.Graph, dir visual.Direction, sp Spacing) string {
	dir = dir.Resolve(len(g.Nodes))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"#282c34\", fontcolor=\"#e0e0e0\", color=\"#4b5563\", fontsize=14, fixedsize=true];\n")
	buf.WriteString("  edge [fontsize=11, fontcolor=\"#9ca3af\"];\n")
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(sp.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(sp.RankSep))
	buf.WriteString("\n")

	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
		attrs := []string{
			"label=" + dotQuote(nodeLabel(n)),
			"width=" + inches(n.Footprint.Width),
			"height=" + inches(n.Footprint.Height),
		}
		if n.IsSubComponent() {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		if n.Main {
			attrs = append(attrs, "penwidth=3", "color=\"#60a5fa\"")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			continue
		}
		attrs := []string{
			"label=" + dotQuote(e.Label),
			"color=" + dotQuote(e.Style.Stroke),
			"penwidth=" + strconv.FormatFloat(e.Style.StrokeWidth, 'f', -1, 64),
		}
		if e.Animated {
			attrs = append(attrs, "style=bold")
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(e.Source), dotQuote(e.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// dotQuote returns s as a DOT quoted string. Only quotes and backslashes
// are escaped; newlines become DOT's centred line break.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func nodeLabel(n visual.Node) string {
	if n.Type == "" {
		return n.Label
	}
	return n.Label + "\n" + n.Type
}

// RenderSVG renders a DOT document to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales from a
// 0,0 origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
