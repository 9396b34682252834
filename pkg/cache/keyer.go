package cache

import "strings"

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// LayoutKey addresses the node positions computed for a visual graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// DocumentKey addresses a generated VM detail document.
	DocumentKey(vmID string) string
}

// LayoutKeyOpts are the layout inputs that change the resulting positions.
type LayoutKeyOpts struct {
	Direction string  `json:"direction"`
	NodeSep   float64 `json:"nodesep"`
	RankSep   float64 `json:"ranksep"`
	MarginX   float64 `json:"margin_x"`
	MarginY   float64 `json:"margin_y"`
}

// DefaultKeyer produces "layout:<sha256>" and "document:<id>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey hashes the graph hash together with the options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// DocumentKey keeps the id readable; ids are validated before they get here.
func (DefaultKeyer) DocumentKey(vmID string) string {
	return "document:" + strings.TrimSpace(vmID)
}
