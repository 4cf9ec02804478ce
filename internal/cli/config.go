package cli

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/pipeline"
	"github.com/matzehuels/entitymap/pkg/server"
)

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// configFile is the file name looked up in the config directory.
const configFile = "config.toml"

// Config is the contents of config.toml.
//
//	[layout]
//	min_node_width = 180.0
//	vertical_spacing = 100.0
//
//	[walk]
//	max_depth = 4
//	blocklist = ["vendor", "*.tmp"]
//	indicators = ["Makefile"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	tree_ttl = "5m"
//
//	[server]
//	addr = "127.0.0.1:7878"
//	roots = ["/home/me/code"]
type Config struct {
	Layout layout.Config `toml:"layout"`
	Walk   WalkConfig    `toml:"walk"`
	Cache  CacheConfig   `toml:"cache"`
	Server server.Config `toml:"server"`

	// path is the file the config was read from, or "" for defaults.
	path string
}

// WalkConfig tunes folder scanning.
type WalkConfig struct {
	MaxDepth   int      `toml:"max_depth"`
	Indicators []string `toml:"indicators"` // added to the built-in project indicators
	Blocklist  []string `toml:"blocklist"`  // added to the built-in blocklist
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // file (default), redis or none
	Dir     string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// Namespace prefixes every cache key, so several configs can share a backend.
	Namespace string `toml:"namespace"`

	TreeTTL     time.Duration `toml:"tree_ttl"`
	ArtifactTTL time.Duration `toml:"artifact_ttl"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Walk:   WalkConfig{MaxDepth: pipeline.DefaultMaxDepth},
		Cache:  CacheConfig{Backend: backendFile},
		Server: server.Config{Addr: server.DefaultAddr},
	}
}

// LoadConfig reads path on top of DefaultConfig. An empty path means the
// default location, where a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, configFile)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
			}
			return DefaultConfig(), nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.path = path
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate rejects bad values. The file is decoded on top of DefaultConfig,
// so layout keys it leaves out already hold defaults and explicit zeros stay.
func (c *Config) validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}

	if c.Walk.MaxDepth == 0 {
		c.Walk.MaxDepth = pipeline.DefaultMaxDepth
	}
	if err := errors.ValidateMaxDepth(c.Walk.MaxDepth); err != nil {
		return err
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = backendFile
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be one of file, redis, none: %q", c.Cache.Backend)
	}
	if c.Cache.TreeTTL < 0 || c.Cache.ArtifactTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache TTLs cannot be negative")
	}

	if c.Server.Addr == "" {
		c.Server.Addr = server.DefaultAddr
	}
	return nil
}
