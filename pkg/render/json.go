package render

import (
	"encoding/json"

	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/visual"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent   bool
	selected string
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONSelected records the selected node id.
func WithJSONSelected(id string) JSONOption { return func(r *jsonRenderer) { r.selected = id } }

type jsonOutput struct {
	Direction visual.Direction `json:"direction"`
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Selected  string           `json:"selected,omitempty"`
	Fallbacks []string         `json:"fallbacks,omitempty"`
	Nodes     []jsonNode       `json:"nodes"`
	Edges     []jsonEdge       `json:"edges"`
}

type jsonNode struct {
	ID          string          `json:"id"`
	Kind        visual.NodeKind `json:"kind"`
	Type        string          `json:"type"`
	Label       string          `json:"label"`
	Status      string          `json:"status,omitempty"`
	ParentID    string          `json:"parent_id,omitempty"`
	Main        bool            `json:"main,omitempty"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	SourcePort  visual.Side     `json:"source_port"`
	TargetPort  visual.Side     `json:"target_port"`
	PayloadKind string          `json:"payload_kind,omitempty"`
	Payload     visual.Payload  `json:"payload,omitempty"`
	Fields      []visual.Field  `json:"fields,omitempty"`
}

type jsonEdge struct {
	ID          string       `json:"id"`
	Source      string       `json:"source"`
	Target      string       `json:"target"`
	Label       string       `json:"label"`
	Class       visual.Class `json:"class"`
	Animated    bool         `json:"animated,omitempty"`
	Synthetic   bool         `json:"synthetic,omitempty"`
	Stroke      string       `json:"stroke"`
	StrokeWidth float64      `json:"stroke_width"`
	ArrowSize   float64      `json:"arrow_size"`
}

// RenderJSON serialises a positioned diagram. Unpositioned nodes are
// reported at the origin.
func RenderJSON(res *layout.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Direction: res.Direction,
		Width:     res.Width,
		Height:    res.Height,
		Selected:  r.selected,
		Fallbacks: res.Fallbacks,
		Nodes:     make([]jsonNode, 0, len(res.Graph.Nodes)),
		Edges:     make([]jsonEdge, 0, len(res.Graph.Edges)),
	}
	for _, n := range res.Graph.Nodes {
		out.Nodes = append(out.Nodes, exportNode(n))
	}
	for _, e := range res.Graph.Edges {
		out.Edges = append(out.Edges, jsonEdge{
			ID:          e.ID,
			Source:      e.Source,
			Target:      e.Target,
			Label:       e.Label,
			Class:       e.Class,
			Animated:    e.Animated,
			Synthetic:   e.Synthetic,
			Stroke:      e.Style.Stroke,
			StrokeWidth: e.Style.StrokeWidth,
			ArrowSize:   e.Style.ArrowSize,
		})
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func exportNode(n visual.Node) jsonNode {
	jn := jsonNode{
		ID:         n.ID,
		Kind:       n.Kind,
		Type:       n.Type,
		Label:      n.Label,
		Status:     n.Status,
		ParentID:   n.ParentID,
		Main:       n.Main,
		Width:      n.Footprint.Width,
		Height:     n.Footprint.Height,
		SourcePort: n.SourcePort,
		TargetPort: n.TargetPort,
		Payload:    n.Payload,
	}
	if n.Position != nil {
		jn.X, jn.Y = n.Position.X, n.Position.Y
	}
	if n.Payload != nil {
		jn.PayloadKind = n.Payload.PayloadKind()
		jn.Fields = n.Payload.Fields()
	}
	return jn
}
