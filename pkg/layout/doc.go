// Package layout positions visual graphs with a layered (hierarchical)
// layout.
//
// Coordinate assignment is delegated to an [Engine]. The default engine runs
// Graphviz `dot` in-process through go-graphviz and reads the positioned
// output back with gographviz. Every call builds a fresh DOT document and a
// fresh Graphviz instance, so layouts are re-entrant and identical inputs
// give identical positions.
//
// # Pipeline
//
//  1. Resolve the direction (auto becomes LR above ten nodes).
//  2. Register each node's footprint as a fixed-size box.
//  3. Run the engine and read back node centers.
//  4. Convert centers to top-left corners (y grows downward), add margins,
//     and set port sides from the direction.
//  5. Give any node the engine did not place a pseudo-random fallback
//     position in a 400x400 area, seeded by its id, and log a warning.
//
// The input graph is never mutated; [Result.Graph] is a positioned copy.
package layout
