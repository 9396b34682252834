package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/goccy/go-graphviz"
)

// Point is a node center in pixels, y growing downward, relative to the
// top-left corner of the drawing.
type Point struct {
	X float64
	Y float64
}

// Engine computes node centers for a DOT document. The returned map is
// keyed by DOT node name. Nodes the engine could not place are simply
// absent from it.
type Engine interface {
	Centers(ctx context.Context, dot string) (map[string]Point, error)
}

// GraphvizEngine runs the Graphviz dot layout in-process.
// Each call creates and closes its own Graphviz instance.
type GraphvizEngine struct{}

// positionedFormat asks Graphviz for DOT output annotated with pos and bb.
const positionedFormat = graphviz.Format("dot")

// Centers lays out dot and returns node centers.
func (GraphvizEngine) Centers(ctx context.Context, dot string) (map[string]Point, error) {
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
	if err := gv.Render(ctx, g, positionedFormat, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return ReadCenters(buf.String())
}

// ReadCenters parses positioned DOT (as produced by `dot -Tdot`) and
// returns node centers with the y axis flipped so that it grows downward.
func ReadCenters(positioned string) (map[string]Point, error) {
	ast, err := gographviz.ParseString(positioned)
	if err != nil {
		return nil, fmt.Errorf("parse positioned DOT: %w", err)
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return nil, fmt.Errorf("analyse positioned DOT: %w", err)
	}

	top := 0.0
	if bb, ok := g.Attrs["bb"]; ok {
		box, err := parseFloats(bb)
		if err != nil || len(box) != 4 {
			return nil, fmt.Errorf("invalid bounding box %q", bb)
		}
		top = box[3]
	}

	centers := make(map[string]Point, len(g.Nodes.Nodes))
	for _, n := range g.Nodes.Nodes {
		pos, ok := n.Attrs["pos"]
		if !ok {
			continue
		}
		xy, err := parseFloats(pos)
		if err != nil || len(xy) < 2 {
			continue
		}
		centers[unquote(n.Name)] = Point{X: xy[0], Y: top - xy[1]}
	}
	return centers, nil
}

// parseFloats splits a quoted, comma separated coordinate list such as
// "27,18" or "0,0,310,216". A trailing "!" (pinned position) is ignored.
func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSuffix(unquote(s), "!")
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
