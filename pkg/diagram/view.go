package diagram

import (
	"strings"

	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// View is a consistent snapshot of a controller for rendering.
type View struct {
	State     State            `json:"state"`
	Status    Status           `json:"status"`
	Error     string           `json:"error,omitempty"`
	Request   scene.Request    `json:"request"`
	Mode      projection.Mode  `json:"mode"`
	Direction visual.Direction `json:"direction"`
	Filter    string           `json:"filter,omitempty"`
	Selected  string           `json:"selected,omitempty"`
	Locked    bool             `json:"locked"`
	// Result holds the positioned graph, narrowed by the filter. It is nil
	// until the first successful load.
	Result *layout.Result `json:"result,omitempty"`
}

// View returns the current snapshot. The graph is a copy; callers may
// keep it.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:     c.state,
		Status:    c.status(),
		Request:   c.req,
		Mode:      c.mode,
		Direction: c.direction,
		Filter:    c.filter,
		Selected:  c.selected,
		Locked:    c.locked,
	}
	if c.err != nil {
		v.Error = c.err.Error()
	}
	if c.result != nil {
		res := *c.result
		res.Graph = Filter(c.result.Graph, c.filter)
		v.Result = &res
	}
	return v
}

// Status returns the display status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status()
}

func (c *Controller) status() Status {
	switch c.state {
	case StateFetching:
		return StatusLoading
	case StateError:
		return StatusError
	case StateReady:
		if c.result == nil || c.result.Graph.Empty() {
			return StatusEmpty
		}
		return StatusReady
	default:
		return StatusEmpty
	}
}

// Filter returns a copy of g keeping nodes whose label or type contains
// text (case insensitive) and edges whose endpoints both survive. An empty
// text keeps everything.
func Filter(g *visual.Graph, text string) *visual.Graph {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return g.Clone()
	}

	out := &visual.Graph{Nodes: []visual.Node{}, Edges: []visual.Edge{}}
	keep := make(map[string]bool)
	for _, n := range g.Clone().Nodes {
		if strings.Contains(strings.ToLower(n.Label), text) || strings.Contains(strings.ToLower(n.Type), text) {
			keep[n.ID] = true
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if keep[e.Source] && keep[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
