// Package rules loads the .weavelint.yaml rule-set configuration:
// per-rule enablement, severity overrides and minimum confidence, plus
// a global ignore list.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/document"
)

// DefaultFile is looked up in the workspace root when no explicit rules
// file is configured.
const DefaultFile = ".weavelint.yaml"

// Rule is one rule's configuration. A nil Enabled means enabled.
type Rule struct {
	Enabled       *bool  `yaml:"enabled"`
	Severity      string `yaml:"severity"`
	MinConfidence string `yaml:"minConfidence"`
}

// Config is the full rule-set configuration.
type Config struct {
	Rules  map[string]Rule `yaml:"rules"`
	Ignore []string        `yaml:"ignore"`
}

// Default returns the configuration with every rule enabled and no
// overrides.
func Default() *Config {
	return &Config{Rules: map[string]Rule{}}
}

// Load reads a rules file. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]Rule{}
	}
	return &cfg, nil
}

// Enabled reports whether a rule should run.
func (c *Config) Enabled(name string) bool {
	r, ok := c.Rules[name]
	if !ok || r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// Ignored reports whether a source file matches the ignore glob list.
func (c *Config) Ignored(sourceFile string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := filepath.Match(pattern, sourceFile); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(sourceFile)); ok {
			return true
		}
	}
	return false
}

// Apply adjusts a finding per configuration. The second return is false
// when the finding's confidence is below the rule's minimum; such
// findings are reported only when the caller opts in.
func (c *Config) Apply(f analysis.Finding) (analysis.Finding, bool) {
	r, ok := c.Rules[f.Rule]
	if !ok {
		return f, true
	}
	if r.Severity != "" {
		f.Severity = analysis.Severity(r.Severity)
	}
	if r.MinConfidence != "" && confidenceRank(f.Confidence) < confidenceRank(document.Confidence(r.MinConfidence)) {
		return f, false
	}
	return f, true
}

func confidenceRank(c document.Confidence) int {
	switch c {
	case document.ConfidenceHigh:
		return 3
	case document.ConfidenceMedium:
		return 2
	case document.ConfidenceLow:
		return 1
	default:
		return 0
	}
}
