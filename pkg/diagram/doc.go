// Package diagram holds the interactive state of one topology diagram.
//
// A [Controller] owns the fetched scene graph, the projection mode, the
// flow direction and the positioned visual graph derived from them, plus the
// view state a user manipulates: selection, search filter, lock and manual
// node positions.
//
// # States
//
//	Idle ──Load──▶ Fetching ──ok──▶ Ready ◀──SetMode/SetDirection──┐
//	                  │                └───────────────────────────┘
//	                  └──fail──▶ Error ──Load──▶ Fetching
//
// Every Load issues a new request token. A fetch that completes after a
// newer Load was issued is discarded. Mode and direction changes recompute
// the whole visual graph synchronously and drop manual positions.
//
// After each recompute the optional [Camera] is asked to fit the view on a
// short timer; the graph is complete before the timer fires.
//
// All methods are safe for concurrent use.
package diagram
