package cli

import (
	"errors"
	"io/fs"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
	"github.com/matzehuels/ladderkit/pkg/session"
)

// Session store backends for the server.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeRedis  = "redis"
)

var storeBackends = []string{storeMemory, storeFile, storeRedis}

// Config is the contents of config.toml. Keys that are not set keep their
// default value.
//
//	[layout]
//	block_gap = 120
//
//	[export]
//	compact = true
//
//	[server]
//	store = "redis"
//	session_ttl = "2h"
//
//	[server.redis]
//	addr = "localhost:6379"
type Config struct {
	Layout layout.Config `toml:"layout"`
	Export ExportConfig  `toml:"export"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// ExportConfig holds the defaults of the export and render commands.
type ExportConfig struct {
	Indent   string `toml:"indent"`
	Compact  bool   `toml:"compact"`
	Detailed bool   `toml:"detailed"`
}

// CacheConfig locates the artifact cache.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// ServerConfig holds the defaults of the serve command.
type ServerConfig struct {
	Addr       string              `toml:"addr"`
	Store      string              `toml:"store"`
	SessionDir string              `toml:"session_dir"`
	SessionTTL Duration            `toml:"session_ttl"`
	Redis      session.RedisConfig `toml:"redis"`
}

// Duration is a time.Duration written as a string ("90m", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Export: ExportConfig{Indent: pipeline.DefaultIndent},
		Server: ServerConfig{
			Addr:       "localhost:8080",
			Store:      storeMemory,
			SessionTTL: Duration{session.DefaultTTL},
			Redis: session.RedisConfig{
				Addr:   "localhost:6379",
				Prefix: session.DefaultRedisPrefix,
			},
		},
	}
}

// LoadConfig decodes the file at path on top of DefaultConfig. A missing file
// yields the defaults; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, perrors.New(perrors.ErrCodeInvalidInput, "config %s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	if !slices.Contains(storeBackends, c.Server.Store) {
		return perrors.New(perrors.ErrCodeInvalidInput, "unknown session store %q (want memory, file or redis)", c.Server.Store)
	}
	if c.Server.SessionTTL.Duration < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "session_ttl must not be negative")
	}
	return nil
}
