// Package config assembles the runtime configuration from defaults, an
// optional weavelint.toml, environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Workspace         string `koanf:"workspace"`
	Scope             string `koanf:"scope"`  // file, page, workspace
	Format            string `koanf:"format"` // text, json, html
	Out               string `koanf:"out"`    // report destination, empty = stdout
	FailOn            string `koanf:"fail-on"`
	Watch             bool   `koanf:"watch"`
	Serve             bool   `koanf:"serve"`
	Port              int    `koanf:"port"`
	OpenBrowser       bool   `koanf:"open"`
	ShowLowConfidence bool   `koanf:"show-low-confidence"`
	RulesFile         string `koanf:"rules"`
	Verbosity         string `koanf:"verbosity"`
	LogFormat         string `koanf:"log-format"` // compact, json
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"workspace":           ".",
		"scope":               "workspace",
		"format":              "text",
		"out":                 "",
		"fail-on":             "error",
		"watch":               false,
		"serve":               false,
		"port":                8080,
		"open":                true,
		"show-low-confidence": false,
		"rules":               "",
		"verbosity":           "",
		"log-format":          "compact",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - weavelint.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("weavelint.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: WEAVELINT_ (e.g., WEAVELINT_PORT=9090)
	if err := k.Load(env.Provider("WEAVELINT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "WEAVELINT_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Scope {
	case "file", "page", "workspace":
	default:
		return fmt.Errorf("invalid scope %q (expected file, page or workspace)", c.Scope)
	}
	switch c.Format {
	case "text", "json", "html":
	default:
		return fmt.Errorf("invalid format %q (expected text, json or html)", c.Format)
	}
	switch c.FailOn {
	case "error", "warning", "info", "never":
	default:
		return fmt.Errorf("invalid fail-on %q (expected error, warning, info or never)", c.FailOn)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
