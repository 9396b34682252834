// Package pipeline runs the projection → layout → render chain shared by the
// CLI, the HTTP API and the diagram controller.
//
// # Stages
//
//  1. Project: scene graph to visual graph in summary or detail mode
//  2. Layout: positions through the layered engine, cached by content hash
//  3. Render: JSON, SVG or DOT artifacts from the positioned graph
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, g, pipeline.Options{
//	    Mode:      projection.ModeDetail,
//	    Direction: visual.DirectionAuto,
//	    MainID:    "vm-42",
//	})
//	svg, err := runner.Render(ctx, res, pipeline.FormatSVG)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/visual"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	// FormatDOT is the styled Graphviz source; FormatGraphviz is that source
	// drawn by Graphviz itself.
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatSVG:      true,
	FormatDOT:      true,
	FormatGraphviz: true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, dot, graphviz)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	Mode      projection.Mode  `json:"mode"`
	Direction visual.Direction `json:"direction"`
	// MainID flags the start entity on its visual node.
	MainID string `json:"main_id,omitempty"`
	// Refresh ignores cached positions.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

func (o *Options) setDefaults() {
	if o.Mode == "" {
		o.Mode = projection.ModeSummary
	}
	if o.Direction == "" {
		o.Direction = visual.DirectionAuto
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Spacing is the spacing profile of the projection mode.
func (o *Options) Spacing() layout.Spacing {
	return layout.SpacingFor(o.Mode == projection.ModeDetail)
}

// LayoutKeyOpts returns the cache key inputs for a graph with n nodes.
func (o *Options) LayoutKeyOpts(n int) cache.LayoutKeyOpts {
	sp := o.Spacing()
	return cache.LayoutKeyOpts{
		Direction: string(o.Direction.Resolve(n)),
		NodeSep:   sp.NodeSep,
		RankSep:   sp.RankSep,
		MarginX:   sp.MarginX,
		MarginY:   sp.MarginY,
	}
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	*layout.Result

	// GraphHash is the content hash of the unpositioned visual graph.
	GraphHash string
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Entities    int
	Relations   int
	NodeCount   int
	EdgeCount   int
	ProjectTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool
}

func (s Stats) String() string {
	return fmt.Sprintf("%d entities, %d relations -> %d nodes, %d edges", s.Entities, s.Relations, s.NodeCount, s.EdgeCount)
}
