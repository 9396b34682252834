// Package pkg provides the core libraries for Topoview infrastructure
// diagrams.
//
// # Overview
//
// Topoview draws the neighbourhood of a virtual machine: its host and
// cluster, the datastores it is stored on and the networks it is connected
// to. A scene graph comes from the topology service, is projected into
// visual nodes and edges, laid out in layers and rendered.
//
//	Topology service (or a local file)
//	         ↓
//	    [topology] fetch the scene graph
//	         ↓
//	    [projection] summary or exploded detail view
//	         ↓
//	    [layout] layered positions via Graphviz
//	         ↓
//	    [render] SVG / JSON, or DOT via [pipeline]
//
// [diagram] ties these together behind a state machine that the CLI
// explorer and the HTTP server drive.
//
// # Quick Start
//
//	client, _ := topology.NewClient(topology.Options{BaseURL: "http://localhost:8000"})
//	g, _ := client.Fetch(ctx, scene.NewRequest("vm-42"))
//
//	vg := projection.Project(g, projection.ModeDetail)
//	res, _ := layout.Layout(ctx, vg, layout.Options{Direction: visual.DirectionAuto})
//	svg := render.RenderSVG(res)
//
// # Main Packages
//
// ## Domain
//
// [scene] - Entities, relations and the request that selects them. Scene
// graphs decode from JSON or YAML; the DAT document lives here too.
//
// [visual] - Nodes, edges, footprints and relation classes shared by every
// later stage.
//
// [projection] - Summary and exploded projections, sub-component
// extraction and payload formatting.
//
// [layout] - Layered layout through go-graphviz with a fallback grid for
// nodes the engine could not place.
//
// [render] - Standalone SVG and JSON output.
//
// [diagram] - The interactive controller: load, mode, direction, filter,
// selection, lock and node moves.
//
// ## Infrastructure
//
// [pipeline] - Projection, layout and rendering behind a content-hashed
// cache, used by the CLI and the server alike.
//
// [cache] - File, Redis, MongoDB and null backends behind one interface.
//
// [topology] - HTTP client for the topology service and a file source for
// offline use.
//
// [session] - In-memory diagram sessions with a sliding expiry.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors and their HTTP status mapping.
//
// [httputil] - JSON helpers and retry with backoff.
//
// [observability] - Hook registries for metrics and tracing.
//
// # Testing
//
//	go test ./...              # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example ./... # Examples only
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/scene
// [visual]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/visual
// [projection]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/projection
// [layout]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/render
// [diagram]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/diagram
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/cache
// [topology]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/topology
// [session]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/topoview/pkg/observability
package pkg
