// Package config loads topoview settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables. Command-line flags are applied on top by the caller.
//
// Example file:
//
//	[api]
//	url = "http://topology.internal:8000"
//	timeout = "45s"
//
//	[diagram]
//	direction = "auto"
//	explode = false
//
//	[cache]
//	backend = "redis"
//	layout_ttl = "168h"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[request]
//	depth = 2
//	[request.vm]
//	networks = false
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"

	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// AppName names the config and cache directories.
const AppName = "topoview"

// Environment overrides.
const (
	EnvAPIURL     = "TOPOVIEW_API_URL"
	EnvAPITimeout = "TOPOVIEW_API_TIMEOUT"
	EnvCache      = "TOPOVIEW_CACHE"
	EnvExplode    = "TOPOVIEW_EXPLODE"
)

// Defaults.
const (
	DefaultAPIURL     = "http://localhost:8000"
	DefaultAPITimeout = 30 * time.Second
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultSessionTTL = 30 * time.Minute
	DefaultFitDelay   = 100 * time.Millisecond
)

// Config is the full settings tree.
type Config struct {
	API     APIConfig     `toml:"api"`
	Diagram DiagramConfig `toml:"diagram"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Request RequestConfig `toml:"request"`
}

// APIConfig locates the topology service.
type APIConfig struct {
	URL     string            `toml:"url"`
	Timeout time.Duration     `toml:"timeout"`
	Headers map[string]string `toml:"headers"`
}

// DiagramConfig holds the initial view settings.
type DiagramConfig struct {
	Direction string        `toml:"direction"`
	Explode   bool          `toml:"explode"`
	FitDelay  time.Duration `toml:"fit_delay"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend     string            `toml:"backend"`
	Dir         string            `toml:"dir"`
	LayoutTTL   time.Duration     `toml:"layout_ttl"`
	DocumentTTL time.Duration     `toml:"document_ttl"`
	Redis       cache.RedisConfig `toml:"redis"`
	Mongo       cache.MongoConfig `toml:"mongo"`
}

// ServerConfig configures `topoview serve`.
type ServerConfig struct {
	Addr       string        `toml:"addr"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// RequestConfig holds the default traversal for scene graph requests.
type RequestConfig struct {
	Depth int                  `toml:"depth"`
	VM    scene.VMInclusions   `toml:"vm"`
	Host  scene.HostInclusions `toml:"host"`
}

// Default returns the built-in settings.
func Default() Config {
	req := scene.NewRequest("")
	return Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: DefaultAPITimeout,
		},
		Diagram: DiagramConfig{
			Direction: string(visual.DirectionAuto),
			FitDelay:  DefaultFitDelay,
		},
		Cache: CacheConfig{
			Backend:     cache.BackendFile,
			LayoutTTL:   cache.LayoutTTL,
			DocumentTTL: cache.DocumentTTL,
			Redis:       cache.RedisConfig{Addr: "localhost:6379"},
			Mongo: cache.MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   cache.DefaultMongoDatabase,
				Collection: cache.DefaultMongoCollection,
			},
		},
		Server: ServerConfig{
			Addr:       DefaultListenAddr,
			SessionTTL: DefaultSessionTTL,
		},
		Request: RequestConfig{
			Depth: req.Depth,
			VM:    req.VMInclusions,
			Host:  req.HostInclusions,
		},
	}
}

// Load reads the config file at path on top of the defaults, then applies
// the environment. An empty path means the default location, which may be
// absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string, mustExist bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v := getenv(EnvAPITimeout); v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvAPITimeout)
		}
		c.API.Timeout = d
	}
	if v := getenv(EnvCache); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := getenv(EnvExplode); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvExplode)
		}
		c.Diagram.Explode = b
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.API.URL != "" {
		if err := errors.ValidateURL(c.API.URL); err != nil {
			return err
		}
	}
	if err := errors.ValidateDirection(c.Diagram.Direction); err != nil {
		return err
	}
	if err := errors.ValidateDepth(c.Request.Depth); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (file, redis, mongo, none)", c.Cache.Backend)
	}
	return nil
}

// Mode returns the projection mode for the explode flag.
func (c Config) Mode() projection.Mode {
	return projection.ModeFor(c.Diagram.Explode)
}

// Direction returns the parsed flow direction.
func (c Config) Direction() (visual.Direction, error) {
	return visual.ParseDirection(c.Diagram.Direction)
}

// SceneRequest builds a request for vmID with the configured traversal.
func (c Config) SceneRequest(vmID string) scene.Request {
	return scene.Request{
		StartID:        vmID,
		StartType:      scene.StartTypeVM,
		VMInclusions:   c.Request.VM,
		HostInclusions: c.Request.Host,
		Depth:          c.Request.Depth,
	}.Normalize()
}

// CacheOptions returns the options for cache.Open. The file backend falls
// back to CacheDir when no directory is configured.
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis:   c.Cache.Redis,
		Mongo:   c.Cache.Mongo,
	}
	if (opts.Backend == "" || opts.Backend == cache.BackendFile) && opts.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return opts, err
		}
		opts.Dir = dir
	}
	return opts, nil
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/topoview/config.toml or ~/.config/topoview/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the file cache directory using the XDG convention
// (~/.cache/topoview).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
