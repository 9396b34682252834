// Package render turns a positioned diagram into output artifacts.
//
//   - [RenderJSON]: the positioned nodes and edges with their payloads, for
//     web front ends and golden tests
//   - [RenderSVG]: a standalone drawing with boxes, labels and curved edges
//     coloured by relation class
//
// Both take a [layout.Result]; neither touches the layout engine.
//
//	res, _ := layout.Layout(ctx, g, layout.Options{Direction: visual.DirectionAuto})
//	svg := render.RenderSVG(res, render.WithSelected("vm-1"))
//
// For a Graphviz rendering of the same graph see layout.ToDOT and
// layout.RenderSVG.
//
// [layout.Result]: github.com/matzehuels/topoview/pkg/layout
package render
