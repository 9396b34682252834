package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/pipeline"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/render"
	"github.com/matzehuels/topoview/pkg/scene"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	file      string   // scene file or directory instead of the service
	output    string   // output file (single format) or base path
	formats   []string // json, svg, dot, graphviz
	explode   bool     // detail projection
	direction string   // TB, LR or auto; empty means config
	selected  string   // node highlighted in the SVG
	noCache   bool
	req       requestFlags
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [vm-id]",
		Short: "Render the topology of a VM to JSON, SVG or DOT",
		Long: `Render fetches the scene graph of a VM, projects it (summary or exploded
detail), lays it out and writes one file per requested format.

With --file the scene graph is read from disk instead of the service: a single
JSON/YAML file, or a directory holding <vm-id>.json|yaml files.`,
		Example: `  topoview render vm-42
  topoview render vm-42 --explode --format svg,json -o out/vm-42
  topoview render --file testdata/vm-42.yaml --direction LR -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			var vmID string
			if len(args) == 1 {
				vmID = args[0]
			}
			if vmID == "" {
				if opts.file == "" {
					return errors.New(errors.ErrCodeInvalidInput, "a VM id or --file is required")
				}
				vmID = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
			}
			return c.runRender(cmd.Context(), vmID, &opts)
		},
	}

	cmd.ValidArgsFunction = completeVMIDs

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the scene graph from a file or directory")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVar(&formatsStr, "format", "", "output format(s): svg (default), json, dot, graphviz (comma-separated)")
	cmd.Flags().BoolVarP(&opts.explode, "explode", "e", false, "show sub-components (detail mode)")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "flow direction: TB, LR or auto")
	cmd.Flags().StringVar(&opts.selected, "select", "", "highlight a node in the SVG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "recompute the layout even if cached")
	opts.req.register(cmd)

	return cmd
}

// parseFormats splits the --format flag. Empty means svg.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// formatExt maps a format to its file extension.
func formatExt(format string) string {
	if format == pipeline.FormatGraphviz {
		return "graphviz.svg"
	}
	return format
}

// basePath derives the base output path. A known format extension on
// output is stripped.
func basePath(output, vmID string) string {
	if output == "" {
		return vmID
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	if pipeline.ValidFormats[ext] {
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

// outputPaths returns the destination of every format. A single format
// written to an explicit output uses it verbatim.
func outputPaths(output, vmID string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, vmID)
	for _, f := range formats {
		paths[f] = base + "." + formatExt(f)
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, vmID string, opts *renderOpts) error {
	if opts.output == "-" && len(opts.formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "stdout output takes a single format")
	}

	mode := c.cfg.Mode()
	if opts.explode {
		mode = projection.ModeDetail
	}
	dir, err := c.direction(opts.direction)
	if err != nil {
		return err
	}

	req, err := opts.req.build(c.cfg, vmID)
	if err != nil {
		return err
	}
	fetcher, err := c.newFetcher(opts.file)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	g, err := spin(ctx, "Fetching scene graph for "+vmID+"...", func() (*scene.Graph, error) {
		return fetcher.Fetch(ctx, req)
	})
	if err != nil {
		if !errors.Is(err, errors.ErrCodeMalformedPayload) {
			return err
		}
		c.Logger.Error("scene graph payload is malformed, rendering an empty diagram", "err", err)
		g = nil
	}
	if g != nil {
		c.Logger.Debug("scene graph", "entities", len(g.Nodes), "relations", len(g.Edges), "dangling", len(g.DanglingRelations()))
	}

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, g, pipeline.Options{
		Mode:      mode,
		Direction: dir,
		MainID:    vmID,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", res.Stats.NodeCount))

	if opts.selected != "" {
		if _, ok := res.Graph.Node(opts.selected); !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "node %q not in diagram", opts.selected)
		}
	}

	paths := outputPaths(opts.output, vmID, opts.formats)
	written := make([]string, 0, len(opts.formats))
	for _, format := range opts.formats {
		data, err := c.renderFormat(ctx, runner, res, format, opts.selected)
		if err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
		if err := writeOutput(paths[format], data); err != nil {
			return err
		}
		c.Logger.Debug("generated", "format", format, "bytes", len(data))
		written = append(written, paths[format])
	}

	if opts.output == "-" {
		return nil
	}
	printSuccess("Rendered %s (%s, %s)", StyleHighlight.Render(vmID), mode, res.Direction)
	printStats(res.Stats, res.CacheInfo.LayoutHit)
	printRelations(res.Graph)
	if len(res.Fallbacks) > 0 {
		printWarning("%d node(s) placed at a fallback position", len(res.Fallbacks))
	}
	for _, p := range written {
		printFile(p)
	}
	return nil
}

func (c *CLI) renderFormat(ctx context.Context, runner *pipeline.Runner, res *pipeline.Result, format, selected string) ([]byte, error) {
	switch format {
	case pipeline.FormatSVG:
		return render.RenderSVG(res.Result, render.WithSelected(selected)), nil
	case pipeline.FormatJSON:
		return render.RenderJSON(res.Result, render.WithJSONIndent(), render.WithJSONSelected(selected))
	default:
		return runner.Render(ctx, res.Result, format)
	}
}

// writeOutput writes data to path, or to stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
