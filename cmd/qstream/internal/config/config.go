// Package config holds the qstream CLI configuration.
//
// Configuration is a single YAML file, by default
// os.UserConfigDir()/qstream/config.yaml. Setting QSTREAM_CONFIG_DIR moves
// it to $QSTREAM_CONFIG_DIR/config.yaml.
//
//	log:
//	  level: debug
//	  format: json
//	output: table
//	pipe:
//	  chunk_size: 4096
//	bench:
//	  writers: 8
//	  writes: 1000
//	  payload_size: 256
//	  read_size: 4096
package config

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/solarisin/core/cmd/qstream/internal/bench"
	"github.com/solarisin/core/pkg/cli"
	"github.com/solarisin/core/pkg/logx"
)

const (
	// AppName is the directory name under os.UserConfigDir().
	AppName = "qstream"

	// EnvDir overrides the configuration directory.
	EnvDir = "QSTREAM_CONFIG_DIR"
)

// Config is the root configuration.
type Config struct {
	Log    logx.Config `yaml:"log" json:"log"`
	Output string      `yaml:"output" json:"output"`
	Pipe   Pipe        `yaml:"pipe" json:"pipe"`
	Bench  Bench       `yaml:"bench" json:"bench"`

	path string
}

// Pipe configures the pipe command.
type Pipe struct {
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
}

// Bench configures the bench command.
type Bench struct {
	Writers     int    `yaml:"writers" json:"writers"`
	Writes      int    `yaml:"writes" json:"writes"`
	PayloadSize int    `yaml:"payload_size" json:"payload_size"`
	ReadSize    int    `yaml:"read_size" json:"read_size"`
	Seed        uint64 `yaml:"seed" json:"seed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:    logx.Config{Level: "info", Format: logx.FormatText},
		Output: string(cli.FormatYAML),
		Pipe:   Pipe{ChunkSize: 4096},
		Bench: Bench{
			Writers:     8,
			Writes:      1000,
			PayloadSize: 256,
			ReadSize:    4096,
		},
	}
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	path, err := cli.ConfigPath(AppName, EnvDir)
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration file at path on top of the defaults.
// Keys absent from the file keep their default value. A missing file yields
// the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := cli.LoadConfig(path, cfg); err != nil {
		return nil, err
	}
	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no file path")
	}
	return cli.SaveConfig(c.path, c)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := cli.ParseFormat(c.Output); err != nil {
		return err
	}
	if _, err := logx.New(io.Discard, c.Log); err != nil {
		return err
	}
	if c.Pipe.ChunkSize <= 0 {
		return fmt.Errorf("pipe.chunk_size must be positive")
	}
	if err := c.Bench.Options().Validate(); err != nil {
		return err
	}
	return nil
}

// Options returns the bench options described by b.
func (b Bench) Options() bench.Options {
	return bench.Options{
		Writers:     b.Writers,
		Writes:      b.Writes,
		PayloadSize: b.PayloadSize,
		ReadSize:    b.ReadSize,
		Seed:        b.Seed,
	}
}

// keys maps dotted setting names to setters.
var keys = map[string]func(c *Config, v string) error{
	"log.level":          func(c *Config, v string) error { c.Log.Level = v; return nil },
	"log.format":         func(c *Config, v string) error { c.Log.Format = logx.Format(v); return nil },
	"log.add_source":     func(c *Config, v string) error { return setBool(&c.Log.AddSource, v) },
	"output":             func(c *Config, v string) error { c.Output = v; return nil },
	"pipe.chunk_size":    func(c *Config, v string) error { return setInt(&c.Pipe.ChunkSize, v) },
	"bench.writers":      func(c *Config, v string) error { return setInt(&c.Bench.Writers, v) },
	"bench.writes":       func(c *Config, v string) error { return setInt(&c.Bench.Writes, v) },
	"bench.payload_size": func(c *Config, v string) error { return setInt(&c.Bench.PayloadSize, v) },
	"bench.read_size":    func(c *Config, v string) error { return setInt(&c.Bench.ReadSize, v) },
	"bench.seed": func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Bench.Seed = n
		return nil
	},
}

// Keys returns the settable keys, sorted.
func Keys() []string {
	ks := make([]string, 0, len(keys))
	for k := range keys {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Set assigns a single dotted key and validates the result. On failure the
// configuration is left unchanged.
func (c *Config) Set(key, value string) error {
	set, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	next := *c
	if err := set(&next, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	*c = next
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
