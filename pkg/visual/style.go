package visual

// Style is the stroke and arrow styling hint for an edge.
type Style struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	ArrowSize   float64 `json:"arrow_size"`
}

// Arrow sizes for service relations and synthetic sub-component edges.
const (
	RelationArrowSize  = 20
	SyntheticArrowSize = 15
)

// Accent colours for synthetic identity and compute edges, which are
// classified as other but drawn in their own colour.
const (
	ColorIdentity = "#4aaeff"
	ColorCompute  = "#4ade80"
)

var classColors = map[Class]string{
	ClassHosting: "#60a5fa",
	ClassStorage: "#eab308",
	ClassNetwork: "#7dd3fc",
	ClassOther:   "#b1b1b7",
}

// ColorOf returns the stroke colour of a class.
func ColorOf(c Class) string {
	if col, ok := classColors[c]; ok {
		return col
	}
	return classColors[ClassOther]
}

// RelationStyle is the style of an edge carried over from the scene graph.
func RelationStyle(c Class) Style {
	width := 2.0
	if c == ClassHosting {
		width = 2.5
	}
	return Style{Stroke: ColorOf(c), StrokeWidth: width, ArrowSize: RelationArrowSize}
}

// SyntheticStyle is the style of a sub-component edge. An empty color
// falls back to the class colour.
func SyntheticStyle(c Class, color string) Style {
	if color == "" {
		color = ColorOf(c)
	}
	return Style{Stroke: color, StrokeWidth: 2, ArrowSize: SyntheticArrowSize}
}
