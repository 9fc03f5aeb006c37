// Package config handles configuration loading and validation for graft.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitPath   string          `yaml:"git_path"`
	Git       GitConfig       `yaml:"git"`
	Generator GeneratorConfig `yaml:"generator"`
	Safety    SafetyConfig    `yaml:"safety"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// GitConfig controls version-control coordination during plan execution.
type GitConfig struct {
	// BranchPerFeature creates a feature branch before applying a plan.
	BranchPerFeature bool `yaml:"branch_per_feature"`
	// BranchPrefix is prepended to slugified feature names.
	BranchPrefix string `yaml:"branch_prefix"`
	// AutoCommit stages and commits touched files after a plan is applied.
	AutoCommit bool `yaml:"auto_commit"`
	// AutoPush pushes after a successful auto-commit.
	AutoPush bool `yaml:"auto_push"`
	// CommitTemplate renders the commit message. Available fields:
	// Feature, FileCount, Files.
	CommitTemplate string `yaml:"commit_template"`
}

// GeneratorConfig describes the external assistant command.
type GeneratorConfig struct {
	// Command is a template for the assistant command line. Available
	// fields: Prompt, System. Rendered with shq available for quoting.
	Command string `yaml:"command"`
	// SystemPrompt is passed to the generator on every run.
	SystemPrompt string `yaml:"system_prompt"`
	// InputCostPer1K and OutputCostPer1K price token estimates in USD.
	InputCostPer1K  float64 `yaml:"input_cost_per_1k"`
	OutputCostPer1K float64 `yaml:"output_cost_per_1k"`
}

// SafetyConfig controls which paths a plan may never touch.
type SafetyConfig struct {
	// Protected are doublestar globs rejected by the safety boundary in
	// addition to anything resolving outside the project root.
	Protected []string `yaml:"protected"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		GitPath: "git",
		Git: GitConfig{
			BranchPerFeature: true,
			BranchPrefix:     "graft/",
			AutoCommit:       false,
			CommitTemplate:   "graft: {{ .Feature }} ({{ .FileCount }} files)",
		},
		Generator: GeneratorConfig{
			InputCostPer1K:  0.003,
			OutputCostPer1K: 0.015,
		},
		Safety: SafetyConfig{
			Protected: []string{".git/**", "**/.env", "**/.env.*"},
		},
	}
}

// Load reads the configuration file at configPath, falling back to
// defaults when the file does not exist.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
	if c.Git.BranchPrefix == "" {
		c.Git.BranchPrefix = defaults.Git.BranchPrefix
	}
	if c.Git.CommitTemplate == "" {
		c.Git.CommitTemplate = defaults.Git.CommitTemplate
	}
	if c.Generator.InputCostPer1K == 0 {
		c.Generator.InputCostPer1K = defaults.Generator.InputCostPer1K
	}
	if c.Generator.OutputCostPer1K == 0 {
		c.Generator.OutputCostPer1K = defaults.Generator.OutputCostPer1K
	}
	if len(c.Safety.Protected) == 0 {
		c.Safety.Protected = defaults.Safety.Protected
	}
}
