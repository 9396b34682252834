// Package visual defines the renderable diagram derived from a scene graph.
//
// A [Graph] holds typed [Node] boxes and styled [Edge] connectors. Nodes come
// in three size classes ([NodeKind]): full summary boxes, compact primaries
// and small detail sub-components. Each kind has a fixed [Footprint] the
// layout engine registers before placing nodes.
//
// Edges carry a styling [Class] derived from their label by [Classify].
// Classification never affects layout.
//
// Graphs are plain values: node parents are referenced by id, positions are
// optional pointers filled by the layout engine, and [Graph.Clone] gives an
// independent copy that can be positioned without touching the original.
package visual
