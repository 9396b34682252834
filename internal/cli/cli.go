// Package cli implements the topoview command-line interface.
//
// # Commands
//
//   - render: project, lay out and export a VM's topology (json, svg, dot)
//   - fetch: print the raw scene graph returned by the topology service
//   - dat: generate the architecture document for a VM
//   - status, refresh: inspect or trigger the service's inventory collection
//   - serve: run the HTTP API over diagram sessions
//   - explore: browse a diagram interactively in the terminal
//   - cache: manage the layout and document cache
//
// Settings come from the config file (see pkg/config), the environment and
// flags, in increasing precedence. All commands support --verbose (-v) for
// debug logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/buildinfo"
	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/config"
	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/pipeline"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/topology"
	"github.com/matzehuels/topoview/pkg/visual"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	apiURL     string
	cacheFlag  string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          config.AppName,
		Short:        "Topoview draws the infrastructure around a virtual machine",
		Long:         `Topoview fetches the topology of a virtual machine (host, cluster, datastores, networks) from the topology service and lays it out as a layered diagram you can export, serve or explore.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/topoview/config.toml)")
	pf.StringVar(&c.apiURL, "api-url", "", "topology service base URL (overrides config and "+config.EnvAPIURL+")")
	pf.StringVar(&c.cacheFlag, "cache", "", "cache backend: file, redis, mongo, none")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.datCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.refreshCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.API.URL = c.apiURL
	}
	if c.cacheFlag != "" {
		cfg.Cache.Backend = c.cacheFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "api", cfg.API.URL, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured cache backend, or a null cache when
// noCache is set.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := c.cfg.CacheOptions()
	if err != nil {
		return nil, err
	}
	return cache.Open(ctx, opts)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = c.cfg.Cache.LayoutTTL
	return r, nil
}

// newClient creates a topology service client sharing store for documents.
func (c *CLI) newClient(store cache.Cache) (*topology.Client, error) {
	return topology.NewClient(topology.Options{
		BaseURL:     c.cfg.API.URL,
		Timeout:     c.cfg.API.Timeout,
		Headers:     c.cfg.API.Headers,
		Cache:       store,
		DocumentTTL: c.cfg.Cache.DocumentTTL,
		Logger:      c.Logger,
	})
}

// newFetcher returns a file source when file is set, the service client
// otherwise.
func (c *CLI) newFetcher(file string) (diagram.Fetcher, error) {
	if file != "" {
		return topology.FileSource{Path: file}, nil
	}
	client, err := c.newClient(nil)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// direction parses a --direction flag, falling back to the configured one.
func (c *CLI) direction(flag string) (visual.Direction, error) {
	if flag != "" {
		return visual.ParseDirection(flag)
	}
	return c.cfg.Direction()
}

// =============================================================================
// Request Flags
// =============================================================================

// requestFlags are the traversal flags shared by commands that fetch a
// scene graph. Zero values mean "use the config".
type requestFlags struct {
	depth        int
	noHost       bool
	noCluster    bool
	noDatastores bool
	noNetworks   bool
	noVMsOnHost  bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.depth, "depth", 0, "traversal depth, 1 or 2 (default from config)")
	cmd.Flags().BoolVar(&f.noHost, "no-host", false, "skip the VM's host (and its cluster)")
	cmd.Flags().BoolVar(&f.noCluster, "no-cluster", false, "skip the host's cluster")
	cmd.Flags().BoolVar(&f.noDatastores, "no-datastores", false, "skip datastores")
	cmd.Flags().BoolVar(&f.noNetworks, "no-networks", false, "skip networks")
	cmd.Flags().BoolVar(&f.noVMsOnHost, "no-vms-on-host", false, "at depth 2, skip the other VMs on the host")
}

// build applies the flags on top of the configured request for vmID.
func (f *requestFlags) build(cfg config.Config, vmID string) (scene.Request, error) {
	req := cfg.SceneRequest(vmID)
	if f.depth != 0 {
		req.Depth = f.depth
	}
	if f.noHost {
		req.VMInclusions.Host = false
	}
	if f.noCluster {
		req.VMInclusions.ClusterOfHost = false
	}
	if f.noDatastores {
		req.VMInclusions.Datastores = false
	}
	if f.noNetworks {
		req.VMInclusions.Networks = false
	}
	if f.noVMsOnHost {
		req.HostInclusions.VMsOnHost = false
	}
	req = req.Normalize()
	return req, req.Validate()
}
