// Package config loads taskctl configuration.
//
// Sources are layered with koanf, later ones overriding earlier ones:
// defaults, then an optional YAML file, then TASKBOARD_ environment
// variables, then explicit flag values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "TASKBOARD_"

// Defaults.
const (
	DefaultOrigin  = "http://localhost:3000"
	DefaultAPIURL  = "http://localhost:5000"
	DefaultOutput  = "table"
	DefaultTimeout = 30 * time.Second
)

// Config is the resolved CLI configuration.
type Config struct {
	// Origin is where the application is served; production calls resolve
	// the gateway prefix against it.
	Origin string `koanf:"origin"`
	// APIURL is the direct backend base used by development builds.
	APIURL    string        `koanf:"api_url"`
	SessionDB string        `koanf:"session_db"`
	Output    string        `koanf:"output"`
	Timeout   time.Duration `koanf:"timeout"`
}

// Loader layers configuration sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithConfigFile sets the YAML file to read. A missing file is ignored.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: EnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves the configuration. overrides holds flag values; empty
// strings and zero values are skipped so they do not mask other sources.
func (l *Loader) Load(overrides map[string]any) (*Config, error) {
	if err := l.k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if l.filePath != "" {
		if _, err := os.Stat(l.filePath); err == nil {
			if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load file %s: %w", l.filePath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	// TASKBOARD_API_URL -> api_url
	transform := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if set := nonZero(overrides); len(set) > 0 {
		if err := l.k.Load(mapProvider(set), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if c.SessionDB == "" {
		return fmt.Errorf("session_db cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output must be table, json or yaml, got %q", c.Output)
	}
	return nil
}

// DefaultDir is the per-user taskctl directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".taskboard"
	}
	return filepath.Join(home, ".taskboard")
}

// DefaultConfigFile is the YAML file read when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

func defaults() map[string]any {
	return map[string]any{
		"origin":     DefaultOrigin,
		"api_url":    DefaultAPIURL,
		"session_db": filepath.Join(DefaultDir(), "session.db"),
		"output":     DefaultOutput,
		"timeout":    DefaultTimeout.String(),
	}
}

func nonZero(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case time.Duration:
			if val == 0 {
				continue
			}
			v = val.String()
		}
		out[k] = v
	}
	return out
}

// mapProvider is a koanf provider over an in-memory map.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
