package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topoview/pkg/scene"
)

type fetchOpts struct {
	output string
	asYAML bool
	req    requestFlags
}

func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch <vm-id>",
		Short: "Print the raw scene graph of a VM",
		Long: `Fetch asks the topology service for the scene graph of a VM and prints it
unchanged. The output can be fed back to render --file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&opts.asYAML, "yaml", false, "write YAML instead of JSON")
	opts.req.register(cmd)

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, vmID string, opts *fetchOpts) error {
	req, err := opts.req.build(c.cfg, vmID)
	if err != nil {
		return err
	}
	client, err := c.newClient(nil)
	if err != nil {
		return err
	}

	g, err := spin(ctx, "Fetching scene graph for "+vmID+"...", func() (*scene.Graph, error) {
		return client.Fetch(ctx, req)
	})
	if err != nil {
		return err
	}

	data, err := encodeScene(g, opts.asYAML)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, data); err != nil {
		return err
	}
	if opts.output != "-" {
		printSuccess("Fetched %d entities, %d relations", len(g.Nodes), len(g.Edges))
		printFile(opts.output)
	}
	return nil
}

func encodeScene(g *scene.Graph, asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(g)
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
