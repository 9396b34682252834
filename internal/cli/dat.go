package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/scene"
)

type datOpts struct {
	output  string
	refresh bool
	asJSON  bool
	noCache bool
}

func (c *CLI) datCommand() *cobra.Command {
	var opts datOpts

	cmd := &cobra.Command{
		Use:   "dat <vm-id>",
		Short: "Generate the architecture document (DAT) of a VM",
		Long: `Dat asks the topology service to generate the architecture document of a
VM. Documents are cached; --refresh regenerates it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDAT(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON document to a file")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a summary")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached document")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the cache")

	return cmd
}

func (c *CLI) runDAT(ctx context.Context, vmID string, opts *datOpts) error {
	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := c.newClient(store)
	if err != nil {
		return err
	}

	doc, err := spin(ctx, "Generating document for "+vmID+"...", func() (*scene.Document, error) {
		return client.GenerateDocument(ctx, vmID, opts.refresh)
	})
	if err != nil {
		return err
	}

	if opts.asJSON || opts.output != "" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		path := opts.output
		if path == "" {
			path = "-"
		}
		if err := writeOutput(path, append(data, '\n')); err != nil {
			return err
		}
		if path != "-" {
			printSuccess("Generated document for %s", StyleHighlight.Render(vmID))
			printFile(path)
		}
		return nil
	}

	printDocument(doc)
	return nil
}

// printDocument prints the headline fields of a document.
func printDocument(doc *scene.Document) {
	id := doc.Identification
	fmt.Println(StyleTitle.Render(orDash(id.Name)))
	printKeyValue("Guest OS", orDash(id.GuestOSFull))
	printKeyValue("Power", orDash(id.PowerState))
	printKeyValue("vCPU", intOrDash(doc.Compute.TotalVCPUs))
	printKeyValue("RAM (MB)", intOrDash(doc.Compute.ConfiguredRAMMB))
	printKeyValue("Disks", fmt.Sprintf("%d", len(doc.Storage)))
	printKeyValue("NICs", fmt.Sprintf("%d", len(doc.Network)))
	if h := doc.Hosting.Host; h != nil {
		printKeyValue("Host", orDash(h.Name))
	}
	if cl := doc.Hosting.Cluster; cl != nil {
		printKeyValue("Cluster", orDash(cl.Name))
	}
	printKeyValue("Datacenter", orDash(doc.Hosting.DatacenterName))
	printDetail("Generated %s", orDash(doc.GeneratedAt))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
