package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/visual"
)

// Spacing holds the separation distances of a layout, in pixels.
type Spacing struct {
	NodeSep float64 `json:"nodesep"`
	RankSep float64 `json:"ranksep"`
	MarginX float64 `json:"marginx"`
	MarginY float64 `json:"marginy"`
}

// Spacing profiles. Detail explosion gets wider gaps so sub-components do
// not clutter.
var (
	SummarySpacing = Spacing{NodeSep: 80, RankSep: 120, MarginX: 30, MarginY: 30}
	DetailSpacing  = Spacing{NodeSep: 120, RankSep: 160, MarginX: 30, MarginY: 30}
)

// SpacingFor returns the profile for the explosion mode.
func SpacingFor(detail bool) Spacing {
	if detail {
		return DetailSpacing
	}
	return SummarySpacing
}

// Options configures a layout run.
type Options struct {
	Direction visual.Direction
	Spacing   Spacing
	// Engine computes node centers. Defaults to [GraphvizEngine].
	Engine Engine
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.Spacing == (Spacing{}) {
		o.Spacing = SummarySpacing
	}
	if o.Engine == nil {
		o.Engine = GraphvizEngine{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Result is a positioned graph.
type Result struct {
	Graph     *visual.Graph    `json:"graph"`
	Direction visual.Direction `json:"direction"`
	// Fallbacks lists the nodes that received a fallback position.
	Fallbacks []string `json:"fallbacks,omitempty"`
	Width     float64  `json:"width"`
	Height    float64  `json:"height"`
}

// Layout positions every node of g. It only returns an error when ctx is
// done; engine failures degrade to fallback positions.
func Layout(ctx context.Context, g *visual.Graph, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts.setDefaults()

	out := g.Clone()
	dir := opts.Direction.Resolve(len(out.Nodes))
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(dir), len(out.Nodes))
	start := time.Now()

	doc := buildDocument(out, dir, opts.Spacing)
	var (
		centers map[string]Point
		err     error
	)
	if len(out.Nodes) > 0 {
		centers, err = opts.Engine.Centers(ctx, doc.String())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				hooks.OnLayoutComplete(ctx, string(dir), 0, time.Since(start), ctxErr)
				return nil, ctxErr
			}
			opts.Logger.Warn("layout engine failed, using fallback positions", "err", err, "nodes", len(out.Nodes))
			centers = nil
		}
	}

	target, source := dir.Ports()
	res := &Result{Graph: out, Direction: dir}
	for i := range out.Nodes {
		n := &out.Nodes[i]
		n.TargetPort, n.SourcePort = target, source

		c, ok := centers[doc.ids[n.ID]]
		if !ok {
			n.Position = fallbackPosition(n.ID)
			res.Fallbacks = append(res.Fallbacks, n.ID)
			if err == nil {
				opts.Logger.Warn("node missing from layout, using fallback position",
					"node", n.ID, "x", n.Position.X, "y", n.Position.Y)
			}
			continue
		}
		n.Position = &visual.Position{
			X: c.X - n.Footprint.Width/2 + opts.Spacing.MarginX,
			Y: c.Y - n.Footprint.Height/2 + opts.Spacing.MarginY,
		}
	}

	res.Width, res.Height = out.Bounds()
	if len(out.Nodes) > 0 {
		res.Width += opts.Spacing.MarginX
		res.Height += opts.Spacing.MarginY
	}

	elapsed := time.Since(start)
	opts.Logger.Debug("computed layout",
		"nodes", len(out.Nodes),
		"direction", dir,
		"fallbacks", len(res.Fallbacks),
		"duration", elapsed)
	hooks.OnLayoutComplete(ctx, string(dir), len(res.Fallbacks), elapsed, nil)
	return res, nil
}
