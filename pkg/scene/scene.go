package scene

// =============================================================================
// Entity Kinds
// =============================================================================

// Kind is the entity type reported by the topology service.
type Kind string

// Known entity kinds. Other values are preserved as-is and treated as
// opaque entities by the projection.
const (
	KindVM        Kind = "VM"
	KindHost      Kind = "Host"
	KindCluster   Kind = "Cluster"
	KindDatastore Kind = "Datastore"
	KindNetwork   Kind = "Network"
)

// Known reports whether k is one of the fixed entity kinds.
func (k Kind) Known() bool {
	switch k {
	case KindVM, KindHost, KindCluster, KindDatastore, KindNetwork:
		return true
	}
	return false
}

// =============================================================================
// Entity and Relation
// =============================================================================

// Entity is one infrastructure object in a scene graph.
type Entity struct {
	ID     string         `json:"id" yaml:"id"`
	Type   Kind           `json:"type" yaml:"type"`
	Label  string         `json:"label" yaml:"label"`
	Status string         `json:"status,omitempty" yaml:"status,omitempty"`
	Data   map[string]any `json:"data" yaml:"data"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (e *Entity) DisplayLabel() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID
}

// Attr returns a raw attribute value and whether it was present and non-null.
func (e *Entity) Attr(key string) (any, bool) {
	if e.Data == nil {
		return nil, false
	}
	v, ok := e.Data[key]
	return v, ok && v != nil
}

// Relation is a directed edge between two entities.
type Relation struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label" yaml:"label"`
}

// =============================================================================
// Graph
// =============================================================================

// Graph is a scene graph as returned by the topology service.
//
// A nil Nodes or Edges slice means the field was absent from the payload;
// an empty, non-nil slice means the service answered with nothing.
type Graph struct {
	Nodes []Entity   `json:"nodes" yaml:"nodes"`
	Edges []Relation `json:"edges" yaml:"edges"`
}

// Malformed reports whether the graph is missing its nodes or edges field.
// A nil graph is malformed.
func (g *Graph) Malformed() bool {
	return g == nil || g.Nodes == nil || g.Edges == nil
}

// Empty reports whether the graph is well formed but has no entities.
func (g *Graph) Empty() bool {
	return !g.Malformed() && len(g.Nodes) == 0
}

// Entity returns the entity with the given id.
func (g *Graph) Entity(id string) (*Entity, bool) {
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

// DanglingRelations returns the relations whose source or target does not
// reference an entity of the graph, in input order.
func (g *Graph) DanglingRelations() []Relation {
	if g == nil {
		return nil
	}
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Relation
	for _, r := range g.Edges {
		_, okS := ids[r.Source]
		_, okT := ids[r.Target]
		if !okS || !okT {
			out = append(out, r)
		}
	}
	return out
}

// CountByKind returns the number of entities per kind.
func (g *Graph) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	if g == nil {
		return counts
	}
	for _, n := range g.Nodes {
		counts[n.Type]++
	}
	return counts
}
