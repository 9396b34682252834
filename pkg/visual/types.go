package visual

import (
	"strings"

	"github.com/matzehuels/topoview/pkg/errors"
)

// =============================================================================
// Node Kinds and Footprints
// =============================================================================

// NodeKind is the size class of a visual node.
type NodeKind string

const (
	KindSummary NodeKind = "summary" // one box per entity with the full payload
	KindCompact NodeKind = "compact" // primary entity in detail explosion mode
	KindDetail  NodeKind = "detail"  // synthetic sub-component of a primary
)

// Footprint is the fixed width and height of a node, in pixels.
type Footprint struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var footprints = map[NodeKind]Footprint{
	KindSummary: {Width: 320, Height: 400},
	KindCompact: {Width: 220, Height: 50},
	KindDetail:  {Width: 200, Height: 120},
}

// FootprintOf returns the registered footprint for a kind. Unknown kinds
// get the summary footprint.
func FootprintOf(k NodeKind) Footprint {
	if fp, ok := footprints[k]; ok {
		return fp
	}
	return footprints[KindSummary]
}

// =============================================================================
// Positions and Ports
// =============================================================================

// Position is the top-left corner of a node, in pixels, y growing downward.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Side is the side of a node box an edge attaches to.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Direction is the flow direction of a layered layout.
type Direction string

const (
	DirectionTB   Direction = "TB"
	DirectionLR   Direction = "LR"
	DirectionAuto Direction = "auto"
)

// AutoDirectionThreshold is the node count above which auto direction
// switches to left-to-right.
const AutoDirectionThreshold = 10

// Resolve turns auto (or empty) into a concrete direction for a graph with
// n nodes.
func (d Direction) Resolve(n int) Direction {
	switch d {
	case DirectionTB, DirectionLR:
		return d
	}
	if n > AutoDirectionThreshold {
		return DirectionLR
	}
	return DirectionTB
}

// ParseDirection accepts TB, LR or auto in any case; empty means auto.
func ParseDirection(s string) (Direction, error) {
	if err := errors.ValidateDirection(s); err != nil {
		return "", err
	}
	switch strings.ToUpper(s) {
	case "TB":
		return DirectionTB, nil
	case "LR":
		return DirectionLR, nil
	}
	return DirectionAuto, nil
}

// Ports returns the target and source sides for the direction.
func (d Direction) Ports() (target, source Side) {
	if d == DirectionLR {
		return SideLeft, SideRight
	}
	return SideTop, SideBottom
}

// =============================================================================
// Node
// =============================================================================

// Node is a renderable box.
type Node struct {
	ID         string    `json:"id"`
	Kind       NodeKind  `json:"kind"`
	Type       string    `json:"type"`
	Label      string    `json:"label"`
	Status     string    `json:"status,omitempty"`
	ParentID   string    `json:"parent_id,omitempty"`
	Main       bool      `json:"main,omitempty"`
	Payload    Payload   `json:"payload,omitempty"`
	Footprint  Footprint `json:"footprint"`
	Position   *Position `json:"position,omitempty"`
	SourcePort Side      `json:"source_port,omitempty"`
	TargetPort Side      `json:"target_port,omitempty"`
}

// IsSubComponent reports whether the node was synthesised from a primary.
func (n *Node) IsSubComponent() bool { return n.ParentID != "" }

// Center returns the center point of a positioned node.
func (n *Node) Center() (x, y float64, ok bool) {
	if n.Position == nil {
		return 0, 0, false
	}
	return n.Position.X + n.Footprint.Width/2, n.Position.Y + n.Footprint.Height/2, true
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a renderable connector between two nodes.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Class     Class  `json:"class"`
	Animated  bool   `json:"animated,omitempty"`
	Synthetic bool   `json:"synthetic,omitempty"`
	Style     Style  `json:"style"`
}

// =============================================================================
// Graph
// =============================================================================

// Graph is a projected diagram.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool { return g == nil || len(g.Nodes) == 0 }

// Node returns a pointer to the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Index returns a map from node id to its index in Nodes.
func (g *Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Children returns the sub-components whose parent is id, in order.
func (g *Graph) Children(id string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.ParentID == id {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the graph structure. Payloads are shared;
// they are never mutated after projection.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return &Graph{}
	}
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	for i := range out.Nodes {
		if p := out.Nodes[i].Position; p != nil {
			pos := *p
			out.Nodes[i].Position = &pos
		}
	}
	return out
}

// Positioned reports whether every node has a position.
func (g *Graph) Positioned() bool {
	for _, n := range g.Nodes {
		if n.Position == nil {
			return false
		}
	}
	return true
}

// Bounds returns the width and height of the box enclosing all positioned
// nodes, measured from the origin.
func (g *Graph) Bounds() (width, height float64) {
	for _, n := range g.Nodes {
		if n.Position == nil {
			continue
		}
		width = max(width, n.Position.X+n.Footprint.Width)
		height = max(height, n.Position.Y+n.Footprint.Height)
	}
	return width, height
}
