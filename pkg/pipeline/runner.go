package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/render"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// Runner executes the pipeline with a position cache.
//
// The Runner holds no per-run state; multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is how long cached positions live. Zero means cache.LayoutTTL.
	TTL time.Duration
	// Engine overrides the layout engine (tests).
	Engine layout.Engine
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// means cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute projects g and lays it out. Only a done context makes it fail.
func (r *Runner) Execute(ctx context.Context, g *scene.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.setDefaults()

	res := &Result{}
	if g != nil {
		res.Stats.Entities, res.Stats.Relations = len(g.Nodes), len(g.Edges)
	}

	start := time.Now()
	vg := r.Project(ctx, g, opts)
	res.Stats.ProjectTime = time.Since(start)
	res.Stats.NodeCount, res.Stats.EdgeCount = len(vg.Nodes), len(vg.Edges)

	start = time.Now()
	lr, hash, hit, err := r.layoutWithCacheInfo(ctx, vg, opts)
	if err != nil {
		return nil, err
	}
	res.Result = lr
	res.GraphHash = hash
	res.CacheInfo.LayoutHit = hit
	res.Stats.LayoutTime = time.Since(start)

	r.Logger.Debug("pipeline complete",
		"stats", res.Stats.String(),
		"direction", lr.Direction,
		"layout_cached", hit,
		"project", res.Stats.ProjectTime,
		"layout", res.Stats.LayoutTime)
	return res, nil
}

// Project runs the projection stage and reports it to the pipeline hooks.
func (r *Runner) Project(ctx context.Context, g *scene.Graph, opts Options) *visual.Graph {
	r.applyLogger(&opts)
	opts.setDefaults()

	n := 0
	if g != nil {
		n = len(g.Nodes)
	}
	hooks := observability.Pipeline()
	hooks.OnProjectStart(ctx, string(opts.Mode), n)
	start := time.Now()

	vg := projection.ProjectWithOptions(g, projection.Options{
		Mode:   opts.Mode,
		MainID: opts.MainID,
		Logger: opts.Logger,
	})

	hooks.OnProjectComplete(ctx, string(opts.Mode), len(vg.Nodes), len(vg.Edges), time.Since(start))
	return vg
}

// Layout positions vg, reusing cached positions for an identical graph and
// options.
func (r *Runner) Layout(ctx context.Context, vg *visual.Graph, opts Options) (*layout.Result, error) {
	r.applyLogger(&opts)
	opts.setDefaults()
	res, _, _, err := r.layoutWithCacheInfo(ctx, vg, opts)
	return res, err
}

// cachedLayout is the cache record of a layout: positions only, the graph
// itself is recomputed by the projection.
type cachedLayout struct {
	Direction visual.Direction           `json:"direction"`
	Width     float64                    `json:"width"`
	Height    float64                    `json:"height"`
	Positions map[string]visual.Position `json:"positions"`
}

func (r *Runner) layoutWithCacheInfo(ctx context.Context, vg *visual.Graph, opts Options) (*layout.Result, string, bool, error) {
	hash := GraphHash(vg)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts(len(vg.Nodes)))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, ok := applyCached(vg, data); ok {
				return res, hash, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("layout cache read failed", "err", err)
		}
	}

	res, err := layout.Layout(ctx, vg, layout.Options{
		Direction: opts.Direction,
		Spacing:   opts.Spacing(),
		Engine:    r.Engine,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, hash, false, err
	}

	// Fallback positions are not worth keeping: the next run may succeed.
	if len(res.Fallbacks) == 0 && len(res.Graph.Nodes) > 0 {
		rec := cachedLayout{
			Direction: res.Direction,
			Width:     res.Width,
			Height:    res.Height,
			Positions: make(map[string]visual.Position, len(res.Graph.Nodes)),
		}
		for _, n := range res.Graph.Nodes {
			rec.Positions[n.ID] = *n.Position
		}
		if data, err := json.Marshal(rec); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				opts.Logger.Warn("layout cache write failed", "err", err)
			}
		}
	}
	return res, hash, false, nil
}

// applyCached rebuilds a layout result from a cache record. A record that
// does not cover every node is rejected.
func applyCached(vg *visual.Graph, data []byte) (*layout.Result, bool) {
	var rec cachedLayout
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	out := vg.Clone()
	target, source := rec.Direction.Ports()
	for i := range out.Nodes {
		n := &out.Nodes[i]
		p, ok := rec.Positions[n.ID]
		if !ok {
			return nil, false
		}
		n.Position = &visual.Position{X: p.X, Y: p.Y}
		n.TargetPort, n.SourcePort = target, source
	}
	return &layout.Result{
		Graph:     out,
		Direction: rec.Direction,
		Width:     rec.Width,
		Height:    rec.Height,
	}, true
}

// GraphHash is the content hash of a visual graph's structure: node ids,
// kinds and footprints, and edge endpoints. Payload values do not move
// boxes and are left out.
func GraphHash(vg *visual.Graph) string {
	type node struct {
		ID string           `json:"i"`
		K  visual.NodeKind  `json:"k"`
		F  visual.Footprint `json:"f"`
	}
	type edge struct {
		S string `json:"s"`
		T string `json:"t"`
	}
	shape := struct {
		Nodes []node `json:"n"`
		Edges []edge `json:"e"`
	}{}
	for _, n := range vg.Nodes {
		shape.Nodes = append(shape.Nodes, node{n.ID, n.Kind, n.Footprint})
	}
	for _, e := range vg.Edges {
		shape.Edges = append(shape.Edges, edge{e.Source, e.Target})
	}
	data, _ := json.Marshal(shape)
	return cache.Hash(data)
}

// Render produces one artifact from a positioned result.
func (r *Runner) Render(ctx context.Context, res *layout.Result, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return render.RenderSVG(res), nil
	case FormatDOT, FormatGraphviz:
		dot := layout.ToDOT(res.Graph, res.Direction, layout.SpacingFor(hasDetail(res.Graph)))
		if format == FormatDOT {
			return []byte(dot), nil
		}
		return layout.RenderSVG(ctx, dot)
	default:
		return render.RenderJSON(res, render.WithJSONIndent())
	}
}

func hasDetail(g *visual.Graph) bool {
	for _, n := range g.Nodes {
		if n.Kind == visual.KindCompact || n.Kind == visual.KindDetail {
			return true
		}
	}
	return false
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.LayoutTTL
}
