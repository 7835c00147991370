// Package config loads spiderfy's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/spiderfy/config.toml (or
// ~/.config/spiderfy/config.toml) and has four sections:
//
//	[layout]   # spider.Parameters, same keys as the JSON API
//	circle_foot_separation = 90.0
//	circle_spiral_switchover = 9
//
//	[render]
//	formats = ["svg"]
//	theme = "light"
//
//	[cache]
//	backend = "file"   # none, file, redis, mongo
//
//	[server]
//	addr = ":8080"
//	session_store = "memory"
//	session_ttl = "24h"
//
// Keys missing from the file keep their [Default] values. Unknown keys are
// rejected so typos do not silently fall back to defaults. Command-line flags
// override file values.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spiderfy/pkg/cache"
	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/render"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

// AppName names the configuration and cache directories.
const AppName = "spiderfy"

// Session store names accepted in [ServerConfig].
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

// Config is the full configuration file.
type Config struct {
	Layout spider.Parameters `toml:"layout"`
	Render RenderConfig      `toml:"render"`
	Cache  CacheConfig       `toml:"cache"`
	Server ServerConfig      `toml:"server"`
}

// RenderConfig holds artifact defaults.
type RenderConfig struct {
	Formats      []string `toml:"formats"`
	Theme        string   `toml:"theme"`
	Width        float64  `toml:"width"`
	Height       float64  `toml:"height"`
	Scale        float64  `toml:"scale"`
	MarkerRadius float64  `toml:"marker_radius"`
	Labels       bool     `toml:"labels"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`

	// Scope prefixes every cache key so several applications can share
	// one backend, e.g. "app:fleet-tracker:".
	Scope string `toml:"scope"`
}

// RedisConfig is shared by the Redis cache and the Redis session store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the MongoDB cache.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures "spiderfy serve".
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	SessionStore    string   `toml:"session_store"`
	SessionTTL      Duration `toml:"session_ttl"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string ("24h", "30s") in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: spider.DefaultParameters(),
		Render: RenderConfig{
			Formats:      []string{"svg"},
			Theme:        render.LightTheme.Name,
			Scale:        render.DefaultScale,
			MarkerRadius: render.DefaultMarkerRadius,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: AppName + ":"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: AppName, Collection: "cache"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionStore:    SessionStoreMemory,
			SessionTTL:      Duration{24 * time.Hour},
			ReadTimeout:     Duration{10 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			MaxBodyBytes:    1 << 20,
		},
	}
}

// Dir returns the configuration directory using XDG conventions.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the default cache directory (~/.cache/spiderfy/).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the configuration at path. An empty path means [Path]; a
// missing default file yields [Default] while a missing explicit file is an
// error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return cfg, nil
}

// Decode parses TOML from r on top of [Default] and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("[layout] %w", err)
	}
	if _, err := render.ThemeByName(c.Render.Theme); err != nil {
		return fmt.Errorf("[render] %w", err)
	}
	if c.Render.Scale < 0 || c.Render.Width < 0 || c.Render.Height < 0 || c.Render.MarkerRadius < 0 {
		return fmt.Errorf("[render] sizes must not be negative")
	}
	backends := []string{cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo}
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("[cache] unknown backend %q (must be one of %s)", c.Cache.Backend, strings.Join(backends, ", "))
	}
	stores := []string{SessionStoreMemory, SessionStoreFile, SessionStoreRedis}
	if !slices.Contains(stores, c.Server.SessionStore) {
		return fmt.Errorf("[server] unknown session_store %q (must be one of %s)", c.Server.SessionStore, strings.Join(stores, ", "))
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return fmt.Errorf("[server] session_ttl must be positive")
	}
	return nil
}

// Write encodes c as TOML.
func Write(c Config, w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// WriteFile writes c to path, creating parent directories.
func WriteFile(c Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Write(c, &buf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Resolve converts the [cache] section into a cache.Config. An empty
// dir falls back to [CacheDir].
func (c CacheConfig) Resolve() (cache.Config, error) {
	dir := c.Dir
	if dir == "" && (c.Backend == cache.BackendFile || c.Backend == "") {
		d, err := CacheDir()
		if err != nil {
			return cache.Config{}, err
		}
		dir = d
	}
	return cache.Config{
		Backend: c.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Mongo.URI,
			Database:   c.Mongo.Database,
			Collection: c.Mongo.Collection,
		},
	}, nil
}

// RenderOptions converts the [render] section into render options.
func (r RenderConfig) RenderOptions() []render.Option {
	opts := []render.Option{
		render.WithTheme(r.Theme),
		render.WithSize(r.Width, r.Height),
	}
	if r.Scale > 0 {
		opts = append(opts, render.WithScale(r.Scale))
	}
	if r.MarkerRadius > 0 {
		opts = append(opts, render.WithMarkerRadius(r.MarkerRadius))
	}
	if r.Labels {
		opts = append(opts, render.WithLabels())
	}
	return opts
}
