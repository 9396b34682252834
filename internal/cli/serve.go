package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/internal/server"
	"github.com/matzehuels/topoview/pkg/session"
	"github.com/matzehuels/topoview/pkg/topology"
)

type serveOpts struct {
	addr string
	file string
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagram sessions over HTTP",
		Long: `Serve exposes diagram sessions as a JSON API. A client creates a session
for a VM, then changes mode, direction, filter, selection and lock, and reads
the diagram back as JSON or SVG.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			client, err := c.newClient(runner.Cache)
			if err != nil {
				return err
			}

			addr := opts.addr
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			dir, err := c.cfg.Direction()
			if err != nil {
				return err
			}

			srvOpts := server.Options{
				Addr:       addr,
				Fetcher:    client,
				Runner:     runner,
				Sessions:   session.NewMemoryStore(c.cfg.Server.SessionTTL),
				Documents:  client,
				NewRequest: c.cfg.SceneRequest,
				Mode:       c.cfg.Mode(),
				Direction:  dir,
				Logger:     c.Logger,
			}
			if opts.file != "" {
				srvOpts.Fetcher = topology.FileSource{Path: opts.file}
			}

			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			printDetail("Topology service: %s", client.BaseURL())
			return server.New(srvOpts).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "serve scene graphs from a file or directory instead of the service")

	return cmd
}
