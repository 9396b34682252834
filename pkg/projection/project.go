package projection

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// Mode selects how entities are projected.
type Mode string

const (
	ModeSummary Mode = "summary"
	ModeDetail  Mode = "detail"
)

// ParseMode parses a mode name. "exploded" and "explode" are accepted as
// aliases of detail; the empty string is summary.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "summary":
		return ModeSummary, nil
	case "detail", "exploded", "explode":
		return ModeDetail, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid mode: %s (must be 'summary' or 'detail')", s)
}

// ModeFor returns the mode for an explode flag.
func ModeFor(explode bool) Mode {
	if explode {
		return ModeDetail
	}
	return ModeSummary
}

// Options configures a projection.
type Options struct {
	Mode Mode
	// MainID marks the entity the visualization was requested for.
	MainID string
	Logger *log.Logger
}

// Project projects g in the given mode with default options.
func Project(g *scene.Graph, mode Mode) *visual.Graph {
	return ProjectWithOptions(g, Options{Mode: mode})
}

// ProjectWithOptions projects g. It never fails: malformed input yields an
// empty graph.
func ProjectWithOptions(g *scene.Graph, opts Options) *visual.Graph {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if g.Malformed() {
		logger.Error("scene graph is malformed, nothing to project",
			"nil", g == nil,
			"nodes_missing", g != nil && g.Nodes == nil,
			"edges_missing", g != nil && g.Edges == nil)
		return &visual.Graph{Nodes: []visual.Node{}, Edges: []visual.Edge{}}
	}

	var out *visual.Graph
	switch opts.Mode {
	case ModeDetail:
		out = explode(g, logger)
	default:
		out = summarize(g)
	}

	if opts.MainID != "" {
		if n, ok := out.Node(opts.MainID); ok {
			n.Main = true
		}
	}

	logger.Debug("projected scene graph",
		"mode", opts.Mode,
		"entities", len(g.Nodes),
		"relations", len(g.Edges),
		"nodes", len(out.Nodes),
		"edges", len(out.Edges))
	return out
}

// summarize maps entities and relations one to one.
func summarize(g *scene.Graph) *visual.Graph {
	out := &visual.Graph{
		Nodes: make([]visual.Node, 0, len(g.Nodes)),
		Edges: make([]visual.Edge, 0, len(g.Edges)),
	}
	for i := range g.Nodes {
		e := &g.Nodes[i]
		out.Nodes = append(out.Nodes, primaryNode(e, visual.KindSummary, summaryPayload(e)))
	}
	for _, r := range g.Edges {
		out.Edges = append(out.Edges, relationEdge(r.ID, r))
	}
	return out
}

func primaryNode(e *scene.Entity, kind visual.NodeKind, p visual.Payload) visual.Node {
	return visual.Node{
		ID:        e.ID,
		Kind:      kind,
		Type:      string(e.Type),
		Label:     e.DisplayLabel(),
		Status:    e.Status,
		Payload:   p,
		Footprint: visual.FootprintOf(kind),
	}
}

func relationEdge(id string, r scene.Relation) visual.Edge {
	class := visual.Classify(r.Label)
	return visual.Edge{
		ID:       id,
		Source:   r.Source,
		Target:   r.Target,
		Label:    r.Label,
		Class:    class,
		Animated: class == visual.ClassHosting,
		Style:    visual.RelationStyle(class),
	}
}
