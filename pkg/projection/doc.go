// Package projection turns a scene graph into a visual graph.
//
// Two modes are supported:
//
//   - [ModeSummary]: one summary box per entity, one edge per relation.
//   - [ModeDetail]: one compact box per entity plus synthetic sub-component
//     boxes (identity, compute, one per disk, one per network adapter for
//     VMs; hardware and hypervisor for hosts; capacity for datastores),
//     followed by every original relation.
//
// Projection is a pure function. The same graph and mode always produce the
// same node and edge ids in the same order. All kind-specific attribute
// extraction happens here, so downstream consumers receive already-shaped
// [visual.Payload] values and never look at raw attribute maps.
//
// A malformed scene graph (nil, or missing its nodes or edges) projects to
// an empty visual graph and a logged diagnostic; it is never an error.
package projection
